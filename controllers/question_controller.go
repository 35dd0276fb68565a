package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wanjohi/questioner/models"
	"github.com/wanjohi/questioner/monitoring"
	"github.com/wanjohi/questioner/utils"
)

// QuestionController manages questions under a meetup and their votes.
type QuestionController struct {
	db *gorm.DB
}

// NewQuestionController creates a new QuestionController instance.
func NewQuestionController(db *gorm.DB) *QuestionController {
	return &QuestionController{db: db}
}

type questionWithStats struct {
	models.Question
	models.QuestionVoteStats
}

// Create posts a question to a meetup.
func (q *QuestionController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	meetupID, found := pathUint(ctx, "meetup_id")
	if found {
		found = q.db.First(&models.Meetup{}, meetupID).Error == nil
	}
	if !found {
		utils.Error(ctx, http.StatusNotFound, "A meetup with that id does not exist")
		return
	}

	var req struct {
		Title string `json:"title" binding:"required"`
		Body  string `json:"body" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}
	if !utils.ValidString(req.Title) || !utils.ValidString(req.Body) {
		utils.Error(ctx, http.StatusBadRequest, "You cannot post special characters")
		return
	}

	title := utils.SanitizeText(strings.TrimSpace(req.Title))
	body := utils.SanitizeText(strings.TrimSpace(req.Body))

	// Duplicates are checked across every meetup, not just this one.
	var count int64
	q.db.Model(&models.Question{}).Where("title = ? AND body = ?", title, body).Count(&count)
	if count > 0 {
		utils.Error(ctx, http.StatusBadRequest, "Question already exist")
		return
	}

	question := models.Question{
		Title:       title,
		Body:        body,
		MeetupID:    meetupID,
		CreatedByID: userID,
	}
	if err := q.db.Create(&question).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, "Question already exist")
		return
	}
	ctx.JSON(http.StatusCreated, question)
}

// Update edits a question. Only its author may edit it.
func (q *QuestionController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	question, ok := q.findQuestion(ctx, "The specified meetup does not exist", "The specified question does not exist")
	if !ok {
		return
	}
	if question.CreatedByID != userID {
		utils.Error(ctx, http.StatusUnauthorized, "You cannot edit this question. You did not post it")
		return
	}

	var req struct {
		Title string `json:"title" binding:"required"`
		Body  string `json:"body" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}
	if !utils.ValidString(req.Title) || !utils.ValidString(req.Body) {
		utils.Error(ctx, http.StatusBadRequest, "You cannot post special characters")
		return
	}

	title := utils.SanitizeText(strings.TrimSpace(req.Title))
	body := utils.SanitizeText(strings.TrimSpace(req.Body))
	if title == question.Title && body == question.Body {
		utils.Message(ctx, http.StatusBadRequest, "Question is upto date")
		return
	}

	question.Title = title
	question.Body = body
	if err := q.db.Save(question).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, "Question already exist")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "question updated succesfully", "question": question})
}

// Delete removes a question. Only its author may delete it.
func (q *QuestionController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	question, ok := q.findQuestion(ctx, "The specified meetup does not exist", "The specified question does not exist")
	if !ok {
		return
	}
	if question.CreatedByID != userID {
		utils.Error(ctx, http.StatusUnauthorized, "You cannot delete this question. You did not post it")
		return
	}

	if err := q.db.Delete(question).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to delete question")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// List returns the paginated questions of a meetup with vote stats.
func (q *QuestionController) List(ctx *gin.Context) {
	meetupID, found := pathUint(ctx, "meetup_id")
	if found {
		found = q.db.First(&models.Meetup{}, meetupID).Error == nil
	}
	if !found {
		utils.Error(ctx, http.StatusNotFound, "A meetup with that id does not exist")
		return
	}

	page := utils.ParsePage(ctx)
	query := q.db.Model(&models.Question{}).Where("meetup_id = ?", meetupID)

	var total int64
	if err := query.Count(&total).Error; err != nil || total == 0 {
		utils.Error(ctx, http.StatusNotFound, "There are no questions")
		return
	}

	var questions []models.Question
	if err := query.Order("created_at ASC").Offset(page.Offset()).Limit(page.Limit).Find(&questions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list questions")
		return
	}

	results := make([]questionWithStats, 0, len(questions))
	for _, item := range questions {
		results = append(results, questionWithStats{
			Question:          item,
			QuestionVoteStats: questionVoteStats(q.db, item.ID),
		})
	}
	ctx.JSON(http.StatusOK, utils.NewPagedResponse(ctx, page, total, results))
}

// Get returns one question of a meetup with vote stats.
func (q *QuestionController) Get(ctx *gin.Context) {
	question, ok := q.findQuestion(ctx, "The specified meetup does not exist", "The specified question does not exist")
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, questionWithStats{
		Question:          *question,
		QuestionVoteStats: questionVoteStats(q.db, question.ID),
	})
}

// Upvote records a +1 vote on a question.
func (q *QuestionController) Upvote(ctx *gin.Context) {
	q.vote(ctx, 1, "upvote")
}

// Downvote records a -1 vote on a question.
func (q *QuestionController) Downvote(ctx *gin.Context) {
	q.vote(ctx, -1, "downvote")
}

// vote keeps a single signed row per (question, user): repeating the same
// direction is rejected, the opposite direction flips the stored row.
func (q *QuestionController) vote(ctx *gin.Context, value int, direction string) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	meetupID, found := pathUint(ctx, "meetup_id")
	if found {
		found = q.db.First(&models.Meetup{}, meetupID).Error == nil
	}
	if !found {
		utils.Error(ctx, http.StatusBadRequest, "A meetup with that id does not exist")
		return
	}

	questionID, found := pathUint(ctx, "question_id")
	var question models.Question
	if found {
		found = q.db.Where("id = ? AND meetup_id = ?", questionID, meetupID).First(&question).Error == nil
	}
	if !found {
		utils.Error(ctx, http.StatusBadRequest, "The meetup does not have a question with that id")
		return
	}

	var existing models.QuestionVote
	err := q.db.Where("question_id = ? AND user_id = ?", question.ID, userID).First(&existing).Error
	switch {
	case err == nil && existing.Vote == value:
		utils.Error(ctx, http.StatusBadRequest, fmt.Sprintf("You cannot %s a question more than once", direction))
		return
	case err == nil:
		existing.Vote = value
		if err := q.db.Save(&existing).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "failed to submit vote")
			return
		}
		monitoring.CountVote("question", direction)
		q.voteResponse(ctx, question.ID, "You have successfully updated your vote")
	case errors.Is(err, gorm.ErrRecordNotFound):
		vote := models.QuestionVote{Vote: value, QuestionID: question.ID, UserID: userID}
		if err := q.db.Create(&vote).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "failed to submit vote")
			return
		}
		monitoring.CountVote("question", direction)
		q.voteResponse(ctx, question.ID, "Vote submitted sucessfully")
	default:
		utils.Error(ctx, http.StatusInternalServerError, "failed to submit vote")
	}
}

func (q *QuestionController) voteResponse(ctx *gin.Context, questionID uint, message string) {
	stats := questionVoteStats(q.db, questionID)
	ctx.JSON(http.StatusCreated, gin.H{
		"message":    message,
		"upvotes":    stats.Upvotes,
		"downvotes":  stats.Downvotes,
		"vote_score": stats.VoteScore,
	})
}

// findQuestion resolves the meetup and question path parameters, writing the
// given 404 messages on failure.
func (q *QuestionController) findQuestion(ctx *gin.Context, meetupMsg, questionMsg string) (*models.Question, bool) {
	meetupID, found := pathUint(ctx, "meetup_id")
	if found {
		found = q.db.First(&models.Meetup{}, meetupID).Error == nil
	}
	if !found {
		utils.Error(ctx, http.StatusNotFound, meetupMsg)
		return nil, false
	}

	questionID, found := pathUint(ctx, "question_id")
	var question models.Question
	if found {
		found = q.db.Where("id = ? AND meetup_id = ?", questionID, meetupID).First(&question).Error == nil
	}
	if !found {
		utils.Error(ctx, http.StatusNotFound, questionMsg)
		return nil, false
	}
	return &question, true
}

// A vote of at least 1 counts as an upvote, anything lower as a downvote.
func questionVoteStats(db *gorm.DB, questionID uint) models.QuestionVoteStats {
	var stats models.QuestionVoteStats
	db.Model(&models.QuestionVote{}).Where("question_id = ? AND vote >= 1", questionID).Count(&stats.Upvotes)
	db.Model(&models.QuestionVote{}).Where("question_id = ? AND vote < 1", questionID).Count(&stats.Downvotes)
	stats.VoteScore = stats.Upvotes - stats.Downvotes
	return stats
}
