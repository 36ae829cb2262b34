package user

import (
	"errors"
	"fmt"
	"testing"

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
	return db
}

func TestUpsertCreatesAndUpdates(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	created, err := svc.Upsert(&database.User{ID: "42", Username: "alice", Positions: "User"})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if created.ID != "42" {
		t.Errorf("id = %q", created.ID)
	}

	email := "alice@example.com"
	updated, err := svc.Upsert(&database.User{ID: "42", Username: "alice", Email: &email, Positions: "Manager"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if updated.Positions != "Manager" {
		t.Errorf("positions = %q, want Manager", updated.Positions)
	}
	if updated.Email == nil || *updated.Email != email {
		t.Errorf("email was not refreshed")
	}

	var count int64
	db.Model(&database.User{}).Count(&count)
	if count != 1 {
		t.Errorf("got %d user rows, want 1", count)
	}
}

func TestAddPropertyIsIdempotent(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	if _, err := svc.Upsert(&database.User{ID: "42", Username: "alice"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	property := database.Property{Name: "Tower A"}
	if err := db.Create(&property).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.AddProperty("42", property.ID); err != nil {
			t.Fatalf("add property attempt %d: %v", i, err)
		}
	}

	var count int64
	db.Model(&database.UserProperty{}).Count(&count)
	if count != 1 {
		t.Errorf("got %d association rows, want 1", count)
	}
}

func TestRemoveProperty(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	if _, err := svc.Upsert(&database.User{ID: "42", Username: "alice"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	property := database.Property{Name: "Tower A"}
	if err := db.Create(&property).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}
	if err := svc.AddProperty("42", property.ID); err != nil {
		t.Fatalf("add property: %v", err)
	}

	if err := svc.RemoveProperty("42", property.ID); err != nil {
		t.Fatalf("remove property: %v", err)
	}

	var count int64
	db.Model(&database.UserProperty{}).Count(&count)
	if count != 0 {
		t.Errorf("got %d association rows, want 0", count)
	}
}

func TestPropertiesByRawQuery(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	if _, err := svc.Upsert(&database.User{ID: "42", Username: "alice"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	first := database.Property{Name: "Tower A"}
	second := database.Property{Name: ""}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}
	if err := db.Create(&second).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}
	if err := svc.AddProperty("42", second.ID); err != nil {
		t.Fatalf("add property: %v", err)
	}
	if err := svc.AddProperty("42", first.ID); err != nil {
		t.Fatalf("add property: %v", err)
	}

	rows, err := svc.PropertiesByRawQuery("42")
	if err != nil {
		t.Fatalf("raw query: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].ID != first.ID || rows[1].ID != second.ID {
		t.Errorf("rows are not ordered by id: %+v", rows)
	}
	if rows[0].Name != "Tower A" {
		t.Errorf("name = %q", rows[0].Name)
	}
}

func TestGetUserByIDNotFound(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	if _, err := svc.GetUserByID("missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}
