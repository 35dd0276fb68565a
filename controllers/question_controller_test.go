package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanjohi/questioner/models"
)

func questionsPath(meetupID uint) string {
	return fmt.Sprintf("/api/meetups/%d/questions", meetupID)
}

func TestCreateQuestion(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")
	_, token := newUser(t, db, false)

	payload := map[string]string{"title": "Will there be wifi", "body": "Asking for a friend"}
	w := doJSON(t, r, http.MethodPost, questionsPath(meetup.ID), token, payload)
	require.Equal(t, http.StatusCreated, w.Code)

	// unknown meetup
	w = doJSON(t, r, http.MethodPost, questionsPath(999), token, payload)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "A meetup with that id does not exist", decode(t, w)["error"])
}

func TestCreateQuestionRejectsSpecialCharacters(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")
	_, token := newUser(t, db, false)

	w := doJSON(t, r, http.MethodPost, questionsPath(meetup.ID), token, map[string]string{
		"title": "???!!!",
		"body":  "Valid body text",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You cannot post special characters", decode(t, w)["error"])
}

func TestCreateDuplicateQuestion(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")
	other := seedMeetup(t, db, admin.ID, "Go Mombasa")
	_, token := newUser(t, db, false)

	payload := map[string]string{"title": "Will there be wifi", "body": "Asking for a friend"}
	w := doJSON(t, r, http.MethodPost, questionsPath(meetup.ID), token, payload)
	require.Equal(t, http.StatusCreated, w.Code)

	// Duplicates are rejected even under a different meetup.
	w = doJSON(t, r, http.MethodPost, questionsPath(other.ID), token, payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Question already exist", decode(t, w)["error"])
}

func TestUpdateQuestion(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")
	author, token := newUser(t, db, false)
	question := seedQuestion(t, db, meetup.ID, author.ID, "Will there be wifi")

	path := fmt.Sprintf("%s/%d", questionsPath(meetup.ID), question.ID)

	// unchanged payload
	w := doJSON(t, r, http.MethodPut, path, token, map[string]string{
		"title": question.Title,
		"body":  question.Body,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Question is upto date", decode(t, w)["message"])

	// someone else's question
	_, otherToken := newUser(t, db, false)
	w = doJSON(t, r, http.MethodPut, path, otherToken, map[string]string{
		"title": "New title",
		"body":  "New body",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// real edit
	w = doJSON(t, r, http.MethodPut, path, token, map[string]string{
		"title": "Will there be chargers",
		"body":  "Laptop batteries die fast",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "question updated succesfully", decode(t, w)["message"])
}

func TestQuestionVoteFlow(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")
	author, _ := newUser(t, db, false)
	question := seedQuestion(t, db, meetup.ID, author.ID, "Will there be wifi")
	_, token := newUser(t, db, false)

	upvote := fmt.Sprintf("%s/%d/upvote", questionsPath(meetup.ID), question.ID)
	downvote := fmt.Sprintf("%s/%d/downvote", questionsPath(meetup.ID), question.ID)

	// first vote
	w := doJSON(t, r, http.MethodPatch, upvote, token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	payload := decode(t, w)
	assert.Equal(t, "Vote submitted sucessfully", payload["message"])
	assert.EqualValues(t, 1, payload["vote_score"])

	// repeating the same direction
	w = doJSON(t, r, http.MethodPatch, upvote, token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You cannot upvote a question more than once", decode(t, w)["error"])

	// switching direction flips the stored vote in place
	w = doJSON(t, r, http.MethodPatch, downvote, token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	payload = decode(t, w)
	assert.Equal(t, "You have successfully updated your vote", payload["message"])
	assert.EqualValues(t, -1, payload["vote_score"])

	var votes []models.QuestionVote
	require.NoError(t, db.Where("question_id = ?", question.ID).Find(&votes).Error)
	require.Len(t, votes, 1)
	assert.Equal(t, -1, votes[0].Vote)
}

func TestQuestionVoteValidation(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")
	other := seedMeetup(t, db, admin.ID, "Go Mombasa")
	author, _ := newUser(t, db, false)
	question := seedQuestion(t, db, meetup.ID, author.ID, "Will there be wifi")
	_, token := newUser(t, db, false)

	w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/meetups/999/questions/%d/upvote", question.ID), token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "A meetup with that id does not exist", decode(t, w)["error"])

	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("%s/%d/upvote", questionsPath(other.ID), question.ID), token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "The meetup does not have a question with that id", decode(t, w)["error"])
}

func TestListQuestions(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")

	w := doJSON(t, r, http.MethodGet, questionsPath(meetup.ID), "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "There are no questions", decode(t, w)["error"])

	author, _ := newUser(t, db, false)
	for i := 0; i < 3; i++ {
		seedQuestion(t, db, meetup.ID, author.ID, fmt.Sprintf("Question %d", i))
	}

	w = doJSON(t, r, http.MethodGet, questionsPath(meetup.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	payload := decode(t, w)
	assert.EqualValues(t, 3, payload["count"])
	assert.Len(t, payload["results"], 3)
}

func TestDeleteQuestion(t *testing.T) {
	r, db := newTestRouter(t)
	admin, _ := newUser(t, db, true)
	meetup := seedMeetup(t, db, admin.ID, "Go Nairobi")
	author, token := newUser(t, db, false)
	question := seedQuestion(t, db, meetup.ID, author.ID, "Will there be wifi")

	path := fmt.Sprintf("%s/%d", questionsPath(meetup.ID), question.ID)

	_, otherToken := newUser(t, db, false)
	w := doJSON(t, r, http.MethodDelete, path, otherToken, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	var count int64
	db.Model(&models.Question{}).Where("id = ?", question.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}
