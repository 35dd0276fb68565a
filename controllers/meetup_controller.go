package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wanjohi/questioner/models"
	"github.com/wanjohi/questioner/utils"
)

// MeetupController manages meetup CRUD together with tags and images.
type MeetupController struct {
	db *gorm.DB
}

// NewMeetupController creates a new MeetupController instance.
func NewMeetupController(db *gorm.DB) *MeetupController {
	return &MeetupController{db: db}
}

type meetupRequest struct {
	Title         string    `json:"title" binding:"required"`
	Body          string    `json:"body" binding:"required"`
	Location      string    `json:"location" binding:"required"`
	ScheduledDate time.Time `json:"scheduled_date" binding:"required"`
	Tags          []string  `json:"tags"`
	Images        []string  `json:"images"`
}

// validate checks the free-text fields and image URLs, writing the error
// response itself. Returns false when the request was rejected.
func (r *meetupRequest) validate(ctx *gin.Context) bool {
	fields := []struct {
		value string
		label string
	}{
		{r.Title, "meetup title"},
		{r.Body, "meetup body"},
		{r.Location, "meetup location"},
	}
	for _, f := range fields {
		if !utils.ValidString(f.value) {
			utils.Error(ctx, http.StatusBadRequest, fmt.Sprintf("%s is not a valid %s", f.value, f.label))
			return false
		}
	}
	for _, img := range r.Images {
		if !utils.ValidURL(img) {
			utils.Error(ctx, http.StatusBadRequest, fmt.Sprintf("%s is not a valid image url", img))
			return false
		}
	}
	if r.ScheduledDate.Before(time.Now()) {
		utils.Error(ctx, http.StatusBadRequest, "You cannot schedule a meetup on a past time")
		return false
	}
	return true
}

// meetupUpdateRequest carries only the fields the client sent; absent
// fields leave the stored meetup untouched.
type meetupUpdateRequest struct {
	Title         *string    `json:"title"`
	Body          *string    `json:"body"`
	Location      *string    `json:"location"`
	ScheduledDate *time.Time `json:"scheduled_date"`
	Tags          []string   `json:"tags"`
	Images        []string   `json:"images"`
}

// validate checks only the fields present in the payload, writing the
// error response itself. Returns false when the request was rejected.
func (r *meetupUpdateRequest) validate(ctx *gin.Context) bool {
	fields := []struct {
		value *string
		label string
	}{
		{r.Title, "meetup title"},
		{r.Body, "meetup body"},
		{r.Location, "meetup location"},
	}
	for _, f := range fields {
		if f.value != nil && !utils.ValidString(*f.value) {
			utils.Error(ctx, http.StatusBadRequest, fmt.Sprintf("%s is not a valid %s", *f.value, f.label))
			return false
		}
	}
	for _, img := range r.Images {
		if !utils.ValidURL(img) {
			utils.Error(ctx, http.StatusBadRequest, fmt.Sprintf("%s is not a valid image url", img))
			return false
		}
	}
	if r.ScheduledDate != nil && r.ScheduledDate.Before(time.Now()) {
		utils.Error(ctx, http.StatusBadRequest, "You cannot schedule a meetup on a past time")
		return false
	}
	return true
}

type meetupDetail struct {
	models.Meetup
	RsvpSummary models.RsvpSummary `json:"rsvp_summary"`
}

// Create registers a meetup. Only staff accounts may create meetups.
func (m *MeetupController) Create(ctx *gin.Context) {
	user, ok := currentUser(m.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !isStaff(user) {
		utils.Error(ctx, http.StatusUnauthorized, "Admin only can create meetup")
		return
	}

	var req meetupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}
	if !req.validate(ctx) {
		return
	}

	title := utils.SanitizeText(strings.TrimSpace(req.Title))
	body := utils.SanitizeText(strings.TrimSpace(req.Body))
	location := utils.SanitizeText(strings.TrimSpace(req.Location))

	var count int64
	m.db.Model(&models.Meetup{}).
		Where("(title = ? OR body = ?) AND location = ? AND scheduled_date = ?", title, body, location, req.ScheduledDate).
		Count(&count)
	if count > 0 {
		utils.Error(ctx, http.StatusBadRequest, "A similar meetup already exists")
		return
	}

	meetup := models.Meetup{
		Title:         title,
		Body:          body,
		Location:      location,
		ScheduledDate: req.ScheduledDate,
		CreatorID:     user.ID,
	}
	tags, err := m.upsertTags(req.Tags)
	if err == nil {
		meetup.Tags = tags
		meetup.Images, err = m.upsertImages(req.Images)
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to create meetup")
		return
	}

	if err := m.db.Create(&meetup).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, "A similar meetup already exists")
		return
	}
	ctx.JSON(http.StatusCreated, meetup)
}

// Update edits a meetup. Only staff accounts may update meetups.
func (m *MeetupController) Update(ctx *gin.Context) {
	user, ok := currentUser(m.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !isStaff(user) {
		utils.ErrorCap(ctx, http.StatusUnauthorized, "Only an admin user can update a meetup")
		return
	}

	meetupID, ok := pathUint(ctx, "meetup_id")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, "The specified meetup does not exist")
		return
	}
	var meetup models.Meetup
	if err := m.db.Preload("Tags").Preload("Images").First(&meetup, meetupID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "The specified meetup does not exist")
		return
	}

	var req meetupUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}
	if !req.validate(ctx) {
		return
	}

	if req.Title != nil {
		title := utils.SanitizeText(strings.TrimSpace(*req.Title))
		var clash int64
		m.db.Model(&models.Meetup{}).
			Where("title = ? AND id <> ?", title, meetup.ID).
			Count(&clash)
		if clash > 0 {
			utils.Error(ctx, http.StatusNotAcceptable, "A similar meetup already exists")
			return
		}
		meetup.Title = title
	}
	if req.Body != nil {
		meetup.Body = utils.SanitizeText(strings.TrimSpace(*req.Body))
	}
	if req.Location != nil {
		meetup.Location = utils.SanitizeText(strings.TrimSpace(*req.Location))
	}
	if req.ScheduledDate != nil {
		meetup.ScheduledDate = *req.ScheduledDate
	}
	if err := m.db.Save(&meetup).Error; err != nil {
		utils.Error(ctx, http.StatusNotAcceptable, "A similar meetup already exists")
		return
	}
	if len(req.Tags) > 0 {
		if tags, err := m.upsertTags(req.Tags); err == nil {
			_ = m.db.Model(&meetup).Association("Tags").Replace(tags)
			meetup.Tags = tags
		}
	}
	if len(req.Images) > 0 {
		if images, err := m.upsertImages(req.Images); err == nil {
			_ = m.db.Model(&meetup).Association("Images").Replace(images)
			meetup.Images = images
		}
	}
	ctx.JSON(http.StatusCreated, meetup)
}

// Delete removes a meetup. The creator or a staff account may delete.
func (m *MeetupController) Delete(ctx *gin.Context) {
	user, ok := currentUser(m.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	meetupID, ok := pathUint(ctx, "meetup_id")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, "The specified meetup does not exist")
		return
	}
	var meetup models.Meetup
	if err := m.db.First(&meetup, meetupID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "The specified meetup does not exist")
		return
	}

	if meetup.CreatorID != user.ID && !isStaff(user) {
		utils.Error(ctx, http.StatusUnauthorized, "Only an admin or the meetup creator can delete a meetup")
		return
	}

	if err := m.db.Delete(&meetup).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to delete meetup")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// List returns paginated meetups, newest scheduled first.
func (m *MeetupController) List(ctx *gin.Context) {
	m.list(ctx, m.db.Model(&models.Meetup{}))
}

// Upcoming returns paginated meetups scheduled from now onwards.
func (m *MeetupController) Upcoming(ctx *gin.Context) {
	m.list(ctx, m.db.Model(&models.Meetup{}).Where("scheduled_date >= ?", time.Now()))
}

func (m *MeetupController) list(ctx *gin.Context, query *gorm.DB) {
	page := utils.ParsePage(ctx)

	var total int64
	if err := query.Count(&total).Error; err != nil || total == 0 {
		utils.Error(ctx, http.StatusNotFound, "There are no meetups")
		return
	}

	var meetups []models.Meetup
	err := query.Preload("Tags").Preload("Images").
		Order("scheduled_date ASC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&meetups).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list meetups")
		return
	}
	ctx.JSON(http.StatusOK, utils.NewPagedResponse(ctx, page, total, meetups))
}

// Get returns one meetup with its tags, images and RSVP tallies.
func (m *MeetupController) Get(ctx *gin.Context) {
	meetupID, ok := pathUint(ctx, "meetup_id")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, "A meetup with that id does not exist")
		return
	}
	var meetup models.Meetup
	if err := m.db.Preload("Tags").Preload("Images").First(&meetup, meetupID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "A meetup with that id does not exist")
		return
	}

	ctx.JSON(http.StatusOK, meetupDetail{
		Meetup:      meetup,
		RsvpSummary: rsvpSummary(m.db, meetup.ID),
	})
}

func (m *MeetupController) upsertTags(names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		name = utils.SanitizeText(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		tag := models.Tag{TagName: name}
		if err := m.db.Where("tag_name = ?", name).FirstOrCreate(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (m *MeetupController) upsertImages(urls []string) ([]models.Image, error) {
	images := make([]models.Image, 0, len(urls))
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		img := models.Image{ImageURL: raw}
		if err := m.db.Where("image_url = ?", raw).FirstOrCreate(&img).Error; err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}
