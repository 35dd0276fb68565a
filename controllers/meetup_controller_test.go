package controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanjohi/questioner/models"
)

func meetupPayload(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":          title,
		"body":           title + " body",
		"location":       "Nairobi",
		"scheduled_date": time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
		"tags":           []string{"tech", "golang"},
		"images":         []string{"https://img.example.com/banner.png"},
	}
}

func TestCreateMeetupRequiresStaff(t *testing.T) {
	r, db := newTestRouter(t)
	_, token := newUser(t, db, false)

	w := doJSON(t, r, http.MethodPost, "/api/meetups", token, meetupPayload("Go Nairobi"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Admin only can create meetup", decode(t, w)["error"])
}

func TestCreateMeetupAsStaff(t *testing.T) {
	r, db := newTestRouter(t)
	_, token := newUser(t, db, true)

	w := doJSON(t, r, http.MethodPost, "/api/meetups", token, meetupPayload("Go Nairobi"))
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	assert.Equal(t, "Go Nairobi", created["title"])

	// Round trip through the fetch endpoint
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/meetups/%v", created["id"]), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	fetched := decode(t, w)
	assert.Equal(t, "Go Nairobi", fetched["title"])
	assert.Equal(t, "Go Nairobi body", fetched["body"])
	assert.Equal(t, "Nairobi", fetched["location"])
}

func TestCreateMeetupValidatesFields(t *testing.T) {
	r, db := newTestRouter(t)
	_, token := newUser(t, db, true)

	payload := meetupPayload("!!!")
	w := doJSON(t, r, http.MethodPost, "/api/meetups", token, payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "!!! is not a valid meetup title", decode(t, w)["error"])

	payload = meetupPayload("Go Nairobi")
	payload["images"] = []string{"not-a-url"}
	w = doJSON(t, r, http.MethodPost, "/api/meetups", token, payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "not-a-url is not a valid image url", decode(t, w)["error"])

	payload = meetupPayload("Go Nairobi")
	payload["scheduled_date"] = time.Now().Add(-24 * time.Hour).UTC().Format(time.RFC3339)
	w = doJSON(t, r, http.MethodPost, "/api/meetups", token, payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You cannot schedule a meetup on a past time", decode(t, w)["error"])
}

func TestCreateDuplicateMeetup(t *testing.T) {
	r, db := newTestRouter(t)
	_, token := newUser(t, db, true)

	payload := meetupPayload("Go Nairobi")
	w := doJSON(t, r, http.MethodPost, "/api/meetups", token, payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/meetups", token, payload)
	require.NotEqual(t, http.StatusCreated, w.Code)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateMeetupRequiresStaff(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")
	_, token := newUser(t, db, false)

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/meetups/%d", meetup.ID), token, meetupPayload("Renamed"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Only an admin user can update a meetup", decode(t, w)["Error"])
}

func TestUpdateUnknownMeetup(t *testing.T) {
	r, db := newTestRouter(t)
	_, token := newUser(t, db, true)

	w := doJSON(t, r, http.MethodPut, "/api/meetups/999", token, meetupPayload("Renamed"))
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "The specified meetup does not exist", decode(t, w)["error"])
}

func TestUpdateMeetupTitleClash(t *testing.T) {
	r, db := newTestRouter(t)
	admin, token := newUser(t, db, true)
	first := seedMeetup(t, db, admin.ID, "First")
	second := seedMeetup(t, db, admin.ID, "Second")

	// Make the scheduled dates differ; the title check alone must collide.
	require.NoError(t, db.Model(second).
		Update("scheduled_date", second.ScheduledDate.Add(24*time.Hour)).Error)

	payload := map[string]interface{}{"title": first.Title}
	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/meetups/%d", second.ID), token, payload)
	require.Equal(t, http.StatusNotAcceptable, w.Code)
}

func TestUpdateMeetupPartialPayload(t *testing.T) {
	r, db := newTestRouter(t)
	admin, token := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")

	payload := map[string]interface{}{
		"title": "My new title",
		"body":  "New awesome body",
	}
	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/meetups/%d", meetup.ID), token, payload)
	require.Equal(t, http.StatusCreated, w.Code)

	var updated models.Meetup
	require.NoError(t, db.First(&updated, meetup.ID).Error)
	assert.Equal(t, "My new title", updated.Title)
	assert.Equal(t, "New awesome body", updated.Body)
	// fields not in the payload stay untouched
	assert.Equal(t, meetup.Location, updated.Location)
	assert.Equal(t, meetup.ScheduledDate.Unix(), updated.ScheduledDate.Unix())

	// validation still applies to the fields that were sent
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/meetups/%d", meetup.ID), token,
		map[string]interface{}{"location": "@#$%^&*"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "@#$%^&* is not a valid meetup location", decode(t, w)["error"])
}

func TestDeleteMeetup(t *testing.T) {
	r, db := newTestRouter(t)
	admin, adminToken := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")

	// unknown id
	w := doJSON(t, r, http.MethodDelete, "/api/meetups/999", adminToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// another user without privileges
	_, otherToken := newUser(t, db, false)
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/meetups/%d", meetup.ID), otherToken, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// the creator
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/meetups/%d", meetup.ID), adminToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestListMeetups(t *testing.T) {
	r, db := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/meetups", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "There are no meetups", decode(t, w)["error"])

	admin, _ := newUser(t, db, true)
	for i := 0; i < 12; i++ {
		seedMeetup(t, db, admin.ID, fmt.Sprintf("Meetup %d", i))
	}

	w = doJSON(t, r, http.MethodGet, "/api/meetups", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	payload := decode(t, w)
	assert.EqualValues(t, 12, payload["count"])
	assert.NotNil(t, payload["next"])
	assert.Nil(t, payload["previous"])
	assert.Len(t, payload["results"], 10)

	w = doJSON(t, r, http.MethodGet, "/api/meetups?page=2&page_limit=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	payload = decode(t, w)
	assert.Nil(t, payload["next"])
	assert.NotNil(t, payload["previous"])
	assert.Len(t, payload["results"], 2)
}

func TestGetUnknownMeetup(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/meetups/42", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "A meetup with that id does not exist", decode(t, w)["error"])
}

func TestUpcomingMeetups(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	past := seedMeetup(t, db, admin.ID, "Past")
	require.NoError(t, db.Model(past).Update("scheduled_date", time.Now().Add(-72*time.Hour)).Error)
	seedMeetup(t, db, admin.ID, "Soon")

	w := doJSON(t, r, http.MethodGet, "/api/meetups/upcoming/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	payload := decode(t, w)
	assert.EqualValues(t, 1, payload["count"])
}
