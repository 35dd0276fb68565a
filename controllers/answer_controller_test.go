package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanjohi/questioner/models"
)

func answersPath(meetupID, questionID uint) string {
	return fmt.Sprintf("/api/meetups/%d/questions/%d/answers", meetupID, questionID)
}

func TestCreateAnswer(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")
	author, _ := newUser(t, db, false)
	question := seedQuestion(t, db, meetup.ID, author.ID, "Will there be wifi")
	_, token := newUser(t, db, false)

	w := doJSON(t, r, http.MethodPost, answersPath(meetup.ID, question.ID), token, map[string]string{
		"body": "Yes, gigabit fibre",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// missing meetup and question
	w = doJSON(t, r, http.MethodPost, answersPath(999, question.ID), token, map[string]string{"body": "x1"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Meetup does not exist", decode(t, w)["error"])

	w = doJSON(t, r, http.MethodPost, answersPath(meetup.ID, 999), token, map[string]string{"body": "x1"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Question does not exist", decode(t, w)["error"])

	// invalid body
	w = doJSON(t, r, http.MethodPost, answersPath(meetup.ID, question.ID), token, map[string]string{"body": "!!!"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please enter a valid answer", decode(t, w)["error"])

	// duplicate body, platform wide
	w = doJSON(t, r, http.MethodPost, answersPath(meetup.ID, question.ID), token, map[string]string{
		"body": "Yes, gigabit fibre",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Answer already exist", decode(t, w)["error"])
}

func TestUpdateAnswer(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")
	qAuthor, _ := newUser(t, db, false)
	question := seedQuestion(t, db, meetup.ID, qAuthor.ID, "Will there be wifi")
	owner, ownerToken := newUser(t, db, false)
	answer := seedAnswer(t, db, question.ID, owner.ID, "Yes, gigabit fibre")
	seedAnswer(t, db, question.ID, owner.ID, "Bring a hotspot")

	path := fmt.Sprintf("%s/%d", answersPath(meetup.ID, question.ID), answer.ID)

	// not the author
	_, otherToken := newUser(t, db, false)
	w := doJSON(t, r, http.MethodPut, path, otherToken, map[string]string{"body": "Edited"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "You cannot edit this answer. You did not post it", decode(t, w)["error"])

	// editing into another answer's body
	w = doJSON(t, r, http.MethodPut, path, ownerToken, map[string]string{"body": "Bring a hotspot"})
	require.Equal(t, http.StatusNotAcceptable, w.Code)
	assert.Equal(t, "That answer already exists", decode(t, w)["Error"])

	// a proper edit
	w = doJSON(t, r, http.MethodPut, path, ownerToken, map[string]string{"body": "Yes, and power strips"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "You have successfully updated the answer", decode(t, w)["message"])

	// unknown answer
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("%s/999", answersPath(meetup.ID, question.ID)), ownerToken,
		map[string]string{"body": "Whatever works"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "The specified answer does not exist", decode(t, w)["error"])
}

func TestDeleteAnswer(t *testing.T) {
	r, db := newTestRouter(t)
	admin, adminToken := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")
	qAuthor, _ := newUser(t, db, false)
	question := seedQuestion(t, db, meetup.ID, qAuthor.ID, "Will there be wifi")
	owner, _ := newUser(t, db, false)
	answer := seedAnswer(t, db, question.ID, owner.ID, "Yes, gigabit fibre")

	// a user who never posted an answer
	_, strangerToken := newUser(t, db, false)
	path := fmt.Sprintf("%s/%d", answersPath(meetup.ID, question.ID), answer.ID)
	w := doJSON(t, r, http.MethodDelete, path, strangerToken, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "only the admin or user who posted the answer can delete it.", decode(t, w)["error"])

	// staff can always delete
	w = doJSON(t, r, http.MethodDelete, path, adminToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())

	var count int64
	db.Model(&models.Answer{}).Where("id = ?", answer.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestAnswerVoteFlow(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")
	qAuthor, _ := newUser(t, db, false)
	question := seedQuestion(t, db, meetup.ID, qAuthor.ID, "Will there be wifi")
	owner, _ := newUser(t, db, false)
	answer := seedAnswer(t, db, question.ID, owner.ID, "Yes, gigabit fibre")
	_, token := newUser(t, db, false)

	upvote := fmt.Sprintf("%s/%d/upvote", answersPath(meetup.ID, question.ID), answer.ID)
	downvote := fmt.Sprintf("%s/%d/downvote", answersPath(meetup.ID, question.ID), answer.ID)

	w := doJSON(t, r, http.MethodPatch, upvote, token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	payload := decode(t, w)
	assert.EqualValues(t, 1, payload["upvotes"])
	assert.NotNil(t, payload["voter"])

	// identical direction again
	w = doJSON(t, r, http.MethodPatch, upvote, token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You cannot upvote an answer more than once", decode(t, w)["error"])

	// the opposite direction adds a second row instead of replacing
	w = doJSON(t, r, http.MethodPatch, downvote, token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	payload = decode(t, w)
	assert.EqualValues(t, 1, payload["upvotes"])
	assert.EqualValues(t, 1, payload["downvotes"])

	var count int64
	db.Model(&models.AnswerVote{}).Where("answer_id = ?", answer.ID).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestAnswerVoteValidationChain(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")
	other := seedMeetup(t, db, admin.ID, "Go Mombasa")
	qAuthor, _ := newUser(t, db, false)
	question := seedQuestion(t, db, meetup.ID, qAuthor.ID, "Will there be wifi")
	otherQuestion := seedQuestion(t, db, meetup.ID, qAuthor.ID, "Is parking free")
	owner, _ := newUser(t, db, false)
	answer := seedAnswer(t, db, question.ID, owner.ID, "Yes, gigabit fibre")
	_, token := newUser(t, db, false)

	cases := []struct {
		path    string
		message string
	}{
		{fmt.Sprintf("/api/meetups/999/questions/%d/answers/%d/upvote", question.ID, answer.ID), "Meetup does not exist"},
		{fmt.Sprintf("/api/meetups/%d/questions/999/answers/%d/upvote", meetup.ID, answer.ID), "Question does not exist"},
		{fmt.Sprintf("/api/meetups/%d/questions/%d/answers/%d/upvote", other.ID, question.ID, answer.ID), "Question not in given meetup"},
		{fmt.Sprintf("/api/meetups/%d/questions/%d/answers/999/upvote", meetup.ID, question.ID), "Answer does not exist"},
		{fmt.Sprintf("/api/meetups/%d/questions/%d/answers/%d/upvote", meetup.ID, otherQuestion.ID, answer.ID), "Answer not in given question"},
	}
	for _, tc := range cases {
		w := doJSON(t, r, http.MethodPatch, tc.path, token, nil)
		require.Equal(t, http.StatusNotFound, w.Code, tc.message)
		assert.Equal(t, tc.message, decode(t, w)["error"])
	}
}

func TestListAnswers(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")
	qAuthor, _ := newUser(t, db, false)
	question := seedQuestion(t, db, meetup.ID, qAuthor.ID, "Will there be wifi")

	w := doJSON(t, r, http.MethodGet, answersPath(meetup.ID, question.ID), "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	owner, _ := newUser(t, db, false)
	seedAnswer(t, db, question.ID, owner.ID, "Yes, gigabit fibre")
	seedAnswer(t, db, question.ID, owner.ID, "Bring a hotspot")

	w = doJSON(t, r, http.MethodGet, answersPath(meetup.ID, question.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	payload := decode(t, w)
	assert.EqualValues(t, 2, payload["count"])
	assert.Len(t, payload["results"], 2)
}
