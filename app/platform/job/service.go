package job

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"lubd/app/database"
)

var (
	// ErrJobNotFound is returned when no job matches the given public identifier
	ErrJobNotFound = errors.New("job not found")
	// ErrInvalidStatus is returned for a status outside the known set
	ErrInvalidStatus = errors.New("invalid job status")
	// ErrInvalidPriority is returned for a priority outside low, medium and high
	ErrInvalidPriority = errors.New("invalid job priority")
	// ErrMaintenanceNeedsScope is returned when a preventive maintenance job is created without rooms or topics
	ErrMaintenanceNeedsScope = errors.New("preventive maintenance jobs require at least one room and one topic")
)

// Service handles business logic for maintenance jobs
type Service struct {
	db *gorm.DB
}

// NewService creates a new job service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// validStatuses is the full status set accepted on transitions
var validStatuses = map[database.JobStatus]bool{
	database.JobStatusPending:          true,
	database.JobStatusInProgress:       true,
	database.JobStatusWaitingSparepart: true,
	database.JobStatusCompleted:        true,
	database.JobStatusCancelled:        true,
}

// CreateJobInput defines the input structure for creating a new maintenance job
type CreateJobInput struct {
	Description             string             `json:"description" validate:"required"`
	Remarks                 string             `json:"remarks"`
	PropertyID              *string            `json:"property_id"`
	Priority                *string `json:"priority"`
	IsDefective             bool               `json:"is_defective"`
	IsPreventiveMaintenance bool               `json:"is_preventivemaintenance"`
	DueDate                 *time.Time         `json:"due_date"`
	RoomIDs                 []uint             `json:"rooms"`
	TopicIDs                []uint             `json:"topics"`
}

// CreateJob creates a new maintenance job owned by the given user
func (s *Service) CreateJob(userID string, input CreateJobInput) (*database.Job, error) {
	if input.IsPreventiveMaintenance && (len(input.RoomIDs) == 0 || len(input.TopicIDs) == 0) {
		return nil, ErrMaintenanceNeedsScope
	}

	job := database.Job{
		UserID:                  userID,
		Description:             input.Description,
		Remarks:                 input.Remarks,
		PropertyID:              input.PropertyID,
		Status:                  database.JobStatusPending,
		IsDefective:             input.IsDefective,
		IsPreventiveMaintenance: input.IsPreventiveMaintenance,
		DueDate:                 input.DueDate,
	}

	if input.Priority != nil {
		if *input.Priority != database.JobPriorityLow &&
			*input.Priority != database.JobPriorityMedium &&
			*input.Priority != database.JobPriorityHigh {
			return nil, ErrInvalidPriority
		}
		job.Priority = *input.Priority
	}

	if len(input.RoomIDs) > 0 {
		var rooms []database.Room
		if err := s.db.Find(&rooms, input.RoomIDs).Error; err != nil {
			return nil, err
		}
		job.Rooms = rooms
	}

	if len(input.TopicIDs) > 0 {
		var topics []database.Topic
		if err := s.db.Find(&topics, input.TopicIDs).Error; err != nil {
			return nil, err
		}
		job.Topics = topics
	}

	result := s.db.Create(&job)
	if result.Error != nil {
		return nil, result.Error
	}

	return s.GetJobByJobID(job.JobID)
}

// GetAllJobsOptions defines options for filtering jobs
type GetAllJobsOptions struct {
	Status                  string
	Property                string
	UserID                  string
	IsPreventiveMaintenance *bool
	Limit                   int
	Offset                  int
}

// GetAllJobs retrieves a list of maintenance jobs with optional filtering
func (s *Service) GetAllJobs(options GetAllJobsOptions) ([]database.Job, error) {
	var jobs []database.Job

	query := s.db.Preload("Rooms").Preload("Topics").Preload("Images")

	if options.Status != "" {
		if !validStatuses[database.JobStatus(options.Status)] {
			return nil, ErrInvalidStatus
		}
		query = query.Where("status = ?", options.Status)
	}

	if options.Property != "" {
		query = query.Where("property_id = ?", options.Property)
	}

	if options.UserID != "" {
		query = query.Where("user_id = ?", options.UserID)
	}

	if options.IsPreventiveMaintenance != nil {
		query = query.Where("is_preventive_maintenance = ?", *options.IsPreventiveMaintenance)
	}

	limit := options.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	offset := options.Offset
	if offset < 0 {
		offset = 0
	}

	result := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&jobs)
	if result.Error != nil {
		return nil, result.Error
	}

	return jobs, nil
}

// GetJobByJobID retrieves a specific job by its public identifier
func (s *Service) GetJobByJobID(jobID string) (*database.Job, error) {
	var job database.Job
	result := s.db.Preload("Rooms").Preload("Topics").Preload("Images").
		Where("job_id = ?", jobID).First(&job)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, result.Error
	}

	return &job, nil
}

// UpdateJobInput defines the mutable fields of an existing job
type UpdateJobInput struct {
	Description *string            `json:"description"`
	Remarks     *string            `json:"remarks"`
	Priority    *string `json:"priority"`
	IsDefective *bool              `json:"is_defective"`
	DueDate     *time.Time         `json:"due_date"`
	RoomIDs     []uint             `json:"rooms"`
	TopicIDs    []uint             `json:"topics"`
}

// UpdateJob applies a partial update to an existing job
func (s *Service) UpdateJob(jobID string, userID string, input UpdateJobInput) (*database.Job, error) {
	job, err := s.GetJobByJobID(jobID)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		job.Description = *input.Description
	}
	if input.Remarks != nil {
		job.Remarks = *input.Remarks
	}
	if input.Priority != nil {
		job.Priority = *input.Priority
	}
	if input.IsDefective != nil {
		job.IsDefective = *input.IsDefective
	}
	if input.DueDate != nil {
		job.DueDate = input.DueDate
	}
	job.UpdatedByID = &userID

	if input.RoomIDs != nil {
		var rooms []database.Room
		if err := s.db.Find(&rooms, input.RoomIDs).Error; err != nil {
			return nil, err
		}
		if err := s.db.Model(job).Association("Rooms").Replace(rooms); err != nil {
			return nil, err
		}
	}

	if input.TopicIDs != nil {
		var topics []database.Topic
		if err := s.db.Find(&topics, input.TopicIDs).Error; err != nil {
			return nil, err
		}
		if err := s.db.Model(job).Association("Topics").Replace(topics); err != nil {
			return nil, err
		}
	}

	if err := s.db.Save(job).Error; err != nil {
		return nil, err
	}

	return s.GetJobByJobID(jobID)
}

// DeleteJob removes a job and its association rows
func (s *Service) DeleteJob(jobID string) error {
	job, err := s.GetJobByJobID(jobID)
	if err != nil {
		return err
	}

	return s.db.Select("Rooms", "Topics", "Images").Delete(job).Error
}

// UpdateStatus transitions a job to a new status. The first transition
// to completed stamps CompletedAt; later transitions leave it alone.
func (s *Service) UpdateStatus(jobID string, userID string, status database.JobStatus) (*database.Job, error) {
	if !validStatuses[status] {
		return nil, ErrInvalidStatus
	}

	job, err := s.GetJobByJobID(jobID)
	if err != nil {
		return nil, err
	}

	job.Status = status
	job.UpdatedByID = &userID

	if status == database.JobStatusCompleted && job.CompletedAt == nil {
		now := time.Now()
		job.CompletedAt = &now
	}

	if err := s.db.Save(job).Error; err != nil {
		return nil, err
	}

	return job, nil
}

// Stats summarizes the job table for the dashboard
type Stats struct {
	Total                   int64 `json:"total"`
	Pending                 int64 `json:"pending"`
	InProgress              int64 `json:"in_progress"`
	WaitingSparepart        int64 `json:"waiting_sparepart"`
	Completed               int64 `json:"completed"`
	Cancelled               int64 `json:"cancelled"`
	Defective               int64 `json:"defect"`
	IsPreventiveMaintenance int64 `json:"preventive_maintenance"`
}

// GetStats computes per-status counts plus the defect and maintenance shares
func (s *Service) GetStats() (*Stats, error) {
	var stats Stats

	type row struct {
		Status database.JobStatus
		N      int64
	}
	var rows []row
	if err := s.db.Model(&database.Job{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, r := range rows {
		stats.Total += r.N
		switch r.Status {
		case database.JobStatusPending:
			stats.Pending = r.N
		case database.JobStatusInProgress:
			stats.InProgress = r.N
		case database.JobStatusWaitingSparepart:
			stats.WaitingSparepart = r.N
		case database.JobStatusCompleted:
			stats.Completed = r.N
		case database.JobStatusCancelled:
			stats.Cancelled = r.N
		}
	}

	if err := s.db.Model(&database.Job{}).Where("is_defective = ?", true).Count(&stats.Defective).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&database.Job{}).Where("is_preventive_maintenance = ?", true).Count(&stats.IsPreventiveMaintenance).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

// MaintenanceData bundles everything the preventive maintenance screen needs
type MaintenanceData struct {
	Jobs   []database.Job   `json:"jobs"`
	Rooms  []database.Room  `json:"rooms"`
	Topics []database.Topic `json:"topics"`
	Count  int              `json:"count"`
}

// GetMaintenanceJobs lists preventive maintenance jobs with the shared filters
func (s *Service) GetMaintenanceJobs(options GetAllJobsOptions) ([]database.Job, error) {
	pm := true
	options.IsPreventiveMaintenance = &pm
	return s.GetAllJobs(options)
}

// GetMaintenanceRooms lists the rooms referenced by preventive maintenance jobs
func (s *Service) GetMaintenanceRooms() ([]database.Room, error) {
	var rooms []database.Room
	err := s.db.Distinct("rooms.*").
		Joins("JOIN job_rooms jr ON jr.room_id = rooms.id").
		Joins("JOIN jobs j ON j.id = jr.job_id AND j.is_preventive_maintenance = ?", true).
		Order("rooms.id").
		Find(&rooms).Error
	return rooms, err
}

// GetMaintenanceTopics lists the topics referenced by preventive maintenance jobs
func (s *Service) GetMaintenanceTopics() ([]database.Topic, error) {
	var topics []database.Topic
	err := s.db.Distinct("topics.*").
		Joins("JOIN job_topics jt ON jt.topic_id = topics.id").
		Joins("JOIN jobs j ON j.id = jt.job_id AND j.is_preventive_maintenance = ?", true).
		Order("topics.id").
		Find(&topics).Error
	return topics, err
}

// GetMaintenanceData assembles the combined payload in one call
func (s *Service) GetMaintenanceData(options GetAllJobsOptions) (*MaintenanceData, error) {
	jobs, err := s.GetMaintenanceJobs(options)
	if err != nil {
		return nil, err
	}

	rooms, err := s.GetMaintenanceRooms()
	if err != nil {
		return nil, err
	}

	topics, err := s.GetMaintenanceTopics()
	if err != nil {
		return nil, err
	}

	return &MaintenanceData{
		Jobs:   jobs,
		Rooms:  rooms,
		Topics: topics,
		Count:  len(jobs),
	}, nil
}

// AttachImage records a stored file against a job
func (s *Service) AttachImage(jobID string, key string, url string, uploadedByID string) (*database.JobImage, error) {
	job, err := s.GetJobByJobID(jobID)
	if err != nil {
		return nil, err
	}

	image := database.JobImage{
		JobRecordID:  job.ID,
		Key:          key,
		URL:          url,
		UploadedByID: &uploadedByID,
	}
	if err := s.db.Create(&image).Error; err != nil {
		return nil, err
	}

	return &image, nil
}
