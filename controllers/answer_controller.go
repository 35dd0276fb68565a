package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wanjohi/questioner/models"
	"github.com/wanjohi/questioner/monitoring"
	"github.com/wanjohi/questioner/utils"
)

// AnswerController manages answers under a question and their votes.
type AnswerController struct {
	db *gorm.DB
}

// NewAnswerController creates a new AnswerController instance.
func NewAnswerController(db *gorm.DB) *AnswerController {
	return &AnswerController{db: db}
}

type answerWithStats struct {
	models.Answer
	models.AnswerVoteStats
}

// Create posts an answer to a question.
func (a *AnswerController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	question, ok := a.findQuestion(ctx, "Meetup does not exist", "Question does not exist")
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "Please enter a valid answer")
		return
	}
	if !utils.ValidString(req.Body) {
		utils.Error(ctx, http.StatusBadRequest, "Please enter a valid answer")
		return
	}

	body := utils.SanitizeText(strings.TrimSpace(req.Body))

	// Bodies are checked across every question, not just this one.
	var count int64
	a.db.Model(&models.Answer{}).Where("body = ?", body).Count(&count)
	if count > 0 {
		utils.Error(ctx, http.StatusBadRequest, "Answer already exist")
		return
	}

	answer := models.Answer{Body: body, QuestionID: question.ID, CreatorID: userID}
	if err := a.db.Create(&answer).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, "Answer already exist")
		return
	}
	ctx.JSON(http.StatusCreated, answer)
}

// Update edits an answer. Only its author may edit it.
func (a *AnswerController) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	question, ok := a.findQuestion(ctx, "The specified meetup does not exist", "The specified question does not exist")
	if !ok {
		return
	}

	answerID, found := pathUint(ctx, "answer_id")
	var answer models.Answer
	if found {
		found = a.db.Where("id = ? AND question_id = ?", answerID, question.ID).First(&answer).Error == nil
	}
	if !found {
		utils.Error(ctx, http.StatusNotFound, "The specified answer does not exist")
		return
	}

	if answer.CreatorID != userID {
		utils.Error(ctx, http.StatusUnauthorized, "You cannot edit this answer. You did not post it")
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "Please enter a valid answer")
		return
	}
	if !utils.ValidString(req.Body) {
		utils.Error(ctx, http.StatusBadRequest, "Please enter a valid answer")
		return
	}

	body := utils.SanitizeText(strings.TrimSpace(req.Body))
	var clash int64
	a.db.Model(&models.Answer{}).Where("body = ? AND id <> ?", body, answer.ID).Count(&clash)
	if clash > 0 {
		utils.ErrorCap(ctx, http.StatusNotAcceptable, "That answer already exists")
		return
	}

	answer.Body = body
	if err := a.db.Save(&answer).Error; err != nil {
		utils.ErrorCap(ctx, http.StatusNotAcceptable, "That answer already exists")
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"message": "You have successfully updated the answer", "answer": answer})
}

// Delete removes an answer. Superusers, staff and users who have posted
// answers may delete.
func (a *AnswerController) Delete(ctx *gin.Context) {
	user, ok := currentUser(a.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	question, ok := a.findQuestion(ctx, "The specified meetup does not exist", "The specified question does not exist")
	if !ok {
		return
	}

	answerID, found := pathUint(ctx, "answer_id")
	var answer models.Answer
	if found {
		found = a.db.Where("id = ? AND question_id = ?", answerID, question.ID).First(&answer).Error == nil
	}
	if !found {
		utils.Error(ctx, http.StatusNotFound, "The specified answer does not exist")
		return
	}

	if !a.canDelete(user) {
		utils.Error(ctx, http.StatusUnauthorized, "only the admin or user who posted the answer can delete it.")
		return
	}

	if err := a.db.Delete(&answer).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to delete answer")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// List returns the paginated answers of a question with vote stats.
func (a *AnswerController) List(ctx *gin.Context) {
	question, ok := a.findQuestion(ctx, "Meetup does not exist", "Question does not exist")
	if !ok {
		return
	}

	page := utils.ParsePage(ctx)
	query := a.db.Model(&models.Answer{}).Where("question_id = ?", question.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil || total == 0 {
		utils.Error(ctx, http.StatusNotFound, "There are no answers")
		return
	}

	var answers []models.Answer
	if err := query.Order("created_at ASC").Offset(page.Offset()).Limit(page.Limit).Find(&answers).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list answers")
		return
	}

	results := make([]answerWithStats, 0, len(answers))
	for _, item := range answers {
		results = append(results, answerWithStats{
			Answer:          item,
			AnswerVoteStats: answerVoteStats(a.db, item.ID),
		})
	}
	ctx.JSON(http.StatusOK, utils.NewPagedResponse(ctx, page, total, results))
}

// Upvote records an upvote row on an answer.
func (a *AnswerController) Upvote(ctx *gin.Context) {
	a.vote(ctx, models.VoteTypeUpvote, "upvote")
}

// Downvote records a downvote row on an answer.
func (a *AnswerController) Downvote(ctx *gin.Context) {
	a.vote(ctx, models.VoteTypeDownvote, "downvote")
}

// vote creates one row per (creator, answer, vote_type). Repeating the same
// direction is rejected; the opposite direction adds a second row rather
// than replacing the first.
func (a *AnswerController) vote(ctx *gin.Context, voteType, direction string) {
	user, ok := currentUser(a.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	meetupID, found := pathUint(ctx, "meetup_id")
	if found {
		found = a.db.First(&models.Meetup{}, meetupID).Error == nil
	}
	if !found {
		utils.Error(ctx, http.StatusNotFound, "Meetup does not exist")
		return
	}

	questionID, found := pathUint(ctx, "question_id")
	var question models.Question
	if found {
		found = a.db.First(&question, questionID).Error == nil
	}
	if !found {
		utils.Error(ctx, http.StatusNotFound, "Question does not exist")
		return
	}
	if question.MeetupID != meetupID {
		utils.Error(ctx, http.StatusNotFound, "Question not in given meetup")
		return
	}

	answerID, found := pathUint(ctx, "answer_id")
	var answer models.Answer
	if found {
		found = a.db.First(&answer, answerID).Error == nil
	}
	if !found {
		utils.Error(ctx, http.StatusNotFound, "Answer does not exist")
		return
	}
	if answer.QuestionID != question.ID {
		utils.Error(ctx, http.StatusNotFound, "Answer not in given question")
		return
	}

	var count int64
	a.db.Model(&models.AnswerVote{}).
		Where("answer_id = ? AND creator_id = ? AND vote_type = ?", answer.ID, user.ID, voteType).
		Count(&count)
	if count > 0 {
		utils.Error(ctx, http.StatusBadRequest, fmt.Sprintf("You cannot %s an answer more than once", direction))
		return
	}

	vote := models.AnswerVote{VoteType: voteType, AnswerID: answer.ID, CreatorID: user.ID}
	if err := a.db.Create(&vote).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, fmt.Sprintf("You cannot %s an answer more than once", direction))
		return
	}
	monitoring.CountVote("answer", direction)

	stats := answerVoteStats(a.db, answer.ID)
	ctx.JSON(http.StatusCreated, gin.H{
		"message":    "Vote submitted sucessfully",
		"upvotes":    stats.Upvotes,
		"downvotes":  stats.Downvotes,
		"vote_score": stats.VoteScore,
		"voter":      user.Public(),
	})
}

// canDelete mirrors the historical rule: staff, superusers and anyone who
// has ever posted an answer may delete.
func (a *AnswerController) canDelete(user *models.User) bool {
	if user.IsSuperuser || user.IsStaff {
		return true
	}
	var count int64
	a.db.Model(&models.Answer{}).Where("creator_id = ?", user.ID).Count(&count)
	return count > 0
}

// findQuestion resolves the meetup and question path parameters, writing the
// given 404 messages on failure.
func (a *AnswerController) findQuestion(ctx *gin.Context, meetupMsg, questionMsg string) (*models.Question, bool) {
	meetupID, found := pathUint(ctx, "meetup_id")
	if found {
		found = a.db.First(&models.Meetup{}, meetupID).Error == nil
	}
	if !found {
		utils.Error(ctx, http.StatusNotFound, meetupMsg)
		return nil, false
	}

	questionID, found := pathUint(ctx, "question_id")
	var question models.Question
	if found {
		found = a.db.Where("id = ? AND meetup_id = ?", questionID, meetupID).First(&question).Error == nil
	}
	if !found {
		utils.Error(ctx, http.StatusNotFound, questionMsg)
		return nil, false
	}
	return &question, true
}

func answerVoteStats(db *gorm.DB, answerID uint) models.AnswerVoteStats {
	var stats models.AnswerVoteStats
	db.Model(&models.AnswerVote{}).Where("answer_id = ? AND vote_type = ?", answerID, models.VoteTypeUpvote).Count(&stats.Upvotes)
	db.Model(&models.AnswerVote{}).Where("answer_id = ? AND vote_type = ?", answerID, models.VoteTypeDownvote).Count(&stats.Downvotes)
	stats.VoteScore = stats.Upvotes - stats.Downvotes
	return stats
}
