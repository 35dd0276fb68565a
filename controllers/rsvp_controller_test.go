package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanjohi/questioner/models"
)

func TestRsvp(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")
	_, token := newUser(t, db, false)

	path := fmt.Sprintf("/api/meetups/%d/rsvp", meetup.ID)

	// invalid value
	w := doJSON(t, r, http.MethodPost, path, token, map[string]string{"response": "perhaps"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "RSVP, can only take Yes, No or Maybe", decode(t, w)["error"])

	// any value containing yes/no/maybe is accepted, whatever the case
	w = doJSON(t, r, http.MethodPost, path, token, map[string]string{"response": "Definitely YES!"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "yes", decode(t, w)["response"])

	// re-submitting replaces the stored response
	w = doJSON(t, r, http.MethodPost, path, token, map[string]string{"response": "maybe"})
	require.Equal(t, http.StatusCreated, w.Code)

	var rsvps []models.Rsvp
	require.NoError(t, db.Where("meetup_id = ?", meetup.ID).Find(&rsvps).Error)
	require.Len(t, rsvps, 1)
	assert.Equal(t, "maybe", rsvps[0].Response)
}

func TestRsvpUnknownMeetup(t *testing.T) {
	r, db := newTestRouter(t)
	_, token := newUser(t, db, false)

	w := doJSON(t, r, http.MethodPost, "/api/meetups/999/rsvp", token, map[string]string{"response": "yes"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "A meetup with that id does not exist", decode(t, w)["error"])
}

func TestRsvpSummary(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")

	responses := []string{"yes", "yes", "no", "maybe"}
	for _, resp := range responses {
		user, _ := newUser(t, db, false)
		require.NoError(t, db.Create(&models.Rsvp{
			Response:    resp,
			MeetupID:    meetup.ID,
			ResponderID: user.ID,
		}).Error)
	}

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/meetups/%d/rsvps", meetup.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	payload := decode(t, w)
	summary := payload["rsvp_summary"].(map[string]interface{})
	assert.EqualValues(t, 2, summary["yes"])
	assert.EqualValues(t, 1, summary["no"])
	assert.EqualValues(t, 1, summary["maybe"])
	assert.Len(t, payload["rsvps"], 4)

	// the meetup detail embeds the same tallies
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/meetups/%d", meetup.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode(t, w)
	summary = detail["rsvp_summary"].(map[string]interface{})
	assert.EqualValues(t, 2, summary["yes"])
}

func TestListAllRsvps(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	first := seedMeetup(t, db, admin.ID, "Go Nairobi")
	second := seedMeetup(t, db, admin.ID, "Go Mombasa")
	user, _ := newUser(t, db, false)
	require.NoError(t, db.Create(&models.Rsvp{Response: "yes", MeetupID: first.ID, ResponderID: user.ID}).Error)
	require.NoError(t, db.Create(&models.Rsvp{Response: "no", MeetupID: second.ID, ResponderID: user.ID}).Error)

	w := doJSON(t, r, http.MethodGet, "/api/rsvps", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	payload := decode(t, w)
	assert.Len(t, payload["rsvps"], 2)
	summary := payload["rsvp_summary"].(map[string]interface{})
	assert.EqualValues(t, 1, summary["yes"])
	assert.EqualValues(t, 1, summary["no"])
}
