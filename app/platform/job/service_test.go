package job

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"gorm.io/gorm"

	"lubd/app/database"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.Open(dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate database: %v", err)
	}

	if err := db.Create(&database.User{ID: "42", Username: "alice"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return db
}

func seedScope(t *testing.T, db *gorm.DB) (database.Room, database.Topic) {
	t.Helper()

	room := database.Room{Name: "Pump Room", RoomType: "technical"}
	if err := db.Create(&room).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}
	topic := database.Topic{Title: "HVAC"}
	if err := db.Create(&topic).Error; err != nil {
		t.Fatalf("seed topic: %v", err)
	}
	return room, topic
}

var jobIDPattern = regexp.MustCompile(`^j\d{2}[0-9A-F]{6}$`)

func TestCreateJobAssignsIdentifier(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	job, err := svc.CreateJob("42", CreateJobInput{Description: "leaking tap"})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	if !jobIDPattern.MatchString(job.JobID) {
		t.Errorf("job id %q does not match the expected pattern", job.JobID)
	}
	if job.Status != database.JobStatusPending {
		t.Errorf("status = %q, want pending", job.Status)
	}
	if job.Priority != database.JobPriorityMedium {
		t.Errorf("priority = %q, want medium", job.Priority)
	}
}

func TestCreateMaintenanceJobRequiresScope(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	_, err := svc.CreateJob("42", CreateJobInput{
		Description:             "quarterly filter check",
		IsPreventiveMaintenance: true,
	})
	if !errors.Is(err, ErrMaintenanceNeedsScope) {
		t.Fatalf("err = %v, want ErrMaintenanceNeedsScope", err)
	}

	room, topic := seedScope(t, db)
	job, err := svc.CreateJob("42", CreateJobInput{
		Description:             "quarterly filter check",
		IsPreventiveMaintenance: true,
		RoomIDs:                 []uint{room.ID},
		TopicIDs:                []uint{topic.ID},
	})
	if err != nil {
		t.Fatalf("create scoped job: %v", err)
	}
	if len(job.Rooms) != 1 || len(job.Topics) != 1 {
		t.Errorf("associations were not persisted: rooms=%d topics=%d", len(job.Rooms), len(job.Topics))
	}
}

func TestUpdateStatusStampsCompletionOnce(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	job, err := svc.CreateJob("42", CreateJobInput{Description: "broken light"})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	if _, err := svc.UpdateStatus(job.JobID, "42", "broken"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}

	done, err := svc.UpdateStatus(job.JobID, "42", database.JobStatusCompleted)
	if err != nil {
		t.Fatalf("complete job: %v", err)
	}
	if done.CompletedAt == nil {
		t.Fatal("CompletedAt was not stamped")
	}
	first := *done.CompletedAt

	time.Sleep(10 * time.Millisecond)

	reopened, err := svc.UpdateStatus(job.JobID, "42", database.JobStatusInProgress)
	if err != nil {
		t.Fatalf("reopen job: %v", err)
	}
	done, err = svc.UpdateStatus(reopened.JobID, "42", database.JobStatusCompleted)
	if err != nil {
		t.Fatalf("re-complete job: %v", err)
	}
	if !done.CompletedAt.Truncate(time.Second).Equal(first.Truncate(time.Second)) {
		t.Errorf("CompletedAt moved on second completion: %v != %v", done.CompletedAt, first)
	}
	if done.UpdatedByID == nil || *done.UpdatedByID != "42" {
		t.Errorf("UpdatedBy was not recorded")
	}
}

func TestGetAllJobsFilters(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	property := "3"
	for i := 0; i < 3; i++ {
		if _, err := svc.CreateJob("42", CreateJobInput{Description: "job", PropertyID: &property}); err != nil {
			t.Fatalf("create job %d: %v", i, err)
		}
	}
	other := "9"
	job, err := svc.CreateJob("42", CreateJobInput{Description: "elsewhere", PropertyID: &other})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if _, err := svc.UpdateStatus(job.JobID, "42", database.JobStatusCompleted); err != nil {
		t.Fatalf("complete job: %v", err)
	}

	byProperty, err := svc.GetAllJobs(GetAllJobsOptions{Property: "3"})
	if err != nil {
		t.Fatalf("filter by property: %v", err)
	}
	if len(byProperty) != 3 {
		t.Errorf("property filter returned %d jobs, want 3", len(byProperty))
	}

	byStatus, err := svc.GetAllJobs(GetAllJobsOptions{Status: "completed"})
	if err != nil {
		t.Fatalf("filter by status: %v", err)
	}
	if len(byStatus) != 1 {
		t.Errorf("status filter returned %d jobs, want 1", len(byStatus))
	}

	if _, err := svc.GetAllJobs(GetAllJobsOptions{Status: "bogus"}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}

	limited, err := svc.GetAllJobs(GetAllJobsOptions{Limit: 2})
	if err != nil {
		t.Fatalf("limited list: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limit returned %d jobs, want 2", len(limited))
	}
}

func TestMaintenanceData(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	room, topic := seedScope(t, db)

	if _, err := svc.CreateJob("42", CreateJobInput{Description: "ad hoc repair"}); err != nil {
		t.Fatalf("create regular job: %v", err)
	}
	if _, err := svc.CreateJob("42", CreateJobInput{
		Description:             "monthly inspection",
		IsPreventiveMaintenance: true,
		RoomIDs:                 []uint{room.ID},
		TopicIDs:                []uint{topic.ID},
	}); err != nil {
		t.Fatalf("create maintenance job: %v", err)
	}

	data, err := svc.GetMaintenanceData(GetAllJobsOptions{})
	if err != nil {
		t.Fatalf("maintenance data: %v", err)
	}

	if data.Count != 1 || len(data.Jobs) != 1 {
		t.Errorf("got %d maintenance jobs, want 1", len(data.Jobs))
	}
	if len(data.Rooms) != 1 || data.Rooms[0].ID != room.ID {
		t.Errorf("rooms = %+v, want the seeded room only", data.Rooms)
	}
	if len(data.Topics) != 1 || data.Topics[0].ID != topic.ID {
		t.Errorf("topics = %+v, want the seeded topic only", data.Topics)
	}
}

func TestGetStats(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	room, topic := seedScope(t, db)

	for i := 0; i < 2; i++ {
		if _, err := svc.CreateJob("42", CreateJobInput{Description: "pending job"}); err != nil {
			t.Fatalf("create job: %v", err)
		}
	}
	job, err := svc.CreateJob("42", CreateJobInput{
		Description:             "done job",
		IsDefective:             true,
		IsPreventiveMaintenance: true,
		RoomIDs:                 []uint{room.ID},
		TopicIDs:                []uint{topic.ID},
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if _, err := svc.UpdateStatus(job.JobID, "42", database.JobStatusCompleted); err != nil {
		t.Fatalf("complete job: %v", err)
	}

	stats, err := svc.GetStats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.Total != 3 || stats.Pending != 2 || stats.Completed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Defective != 1 || stats.IsPreventiveMaintenance != 1 {
		t.Errorf("defect/maintenance shares = %d/%d, want 1/1", stats.Defective, stats.IsPreventiveMaintenance)
	}
}
