package enrollment

import (
	"errors"
	"testing"

	"github.com/YeonghyeonKO/waffle-sugang/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.ParticipantProfile{},
		&models.InstructorProfile{},
		&models.Seminar{},
		&models.UserSeminar{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func createParticipant(t *testing.T, db *gorm.DB, username string, accepted bool) models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@snu.ac.kr"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	profile := models.ParticipantProfile{UserID: user.ID, University: "SNU", Accepted: accepted}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("failed to create participant profile: %v", err)
	}
	return user
}

func createInstructor(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@snu.ac.kr"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	profile := models.InstructorProfile{UserID: user.ID, Company: "Waffle"}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("failed to create instructor profile: %v", err)
	}
	return user
}

func openSeminar(t *testing.T, db *gorm.DB, engine *Engine, instructor models.User, name string, capacity int) models.Seminar {
	t.Helper()
	seminar := models.Seminar{Name: name, Capacity: capacity, Count: 2, Time: "10:00", Online: true}
	if err := engine.CreateSeminar(instructor.ID, &seminar); err != nil {
		t.Fatalf("failed to open seminar: %v", err)
	}
	return seminar
}

func TestCreateSeminar(t *testing.T) {
	db := setupDB(t)
	engine := NewEngine(db, false)

	instructor := createInstructor(t, db, "inst1")
	participant := createParticipant(t, db, "part1", true)

	t.Run("NonInstructorRejected", func(t *testing.T) {
		seminar := models.Seminar{Name: "django", Capacity: 10, Count: 5, Time: "10:00"}
		if err := engine.CreateSeminar(participant.ID, &seminar); !errors.Is(err, ErrNotInstructor) {
			t.Fatalf("expected ErrNotInstructor, got %v", err)
		}
	})

	t.Run("CreatesSeminarRowAndCharge", func(t *testing.T) {
		seminar := openSeminar(t, db, engine, instructor, "django", 10)

		var row models.UserSeminar
		if err := db.Where("user_id = ? AND seminar_id = ?", instructor.ID, seminar.ID).First(&row).Error; err != nil {
			t.Fatalf("expected instructor enrollment row: %v", err)
		}
		if row.Role != models.RoleInstructor || !row.IsActive() {
			t.Errorf("expected active instructor row, got role=%s status=%s", row.Role, row.Status)
		}

		var profile models.InstructorProfile
		if err := db.Where("user_id = ?", instructor.ID).First(&profile).Error; err != nil {
			t.Fatalf("failed to load instructor profile: %v", err)
		}
		if profile.ChargeID == nil || *profile.ChargeID != seminar.ID {
			t.Errorf("expected charge to be set to seminar %d, got %v", seminar.ID, profile.ChargeID)
		}
	})

	t.Run("SecondSeminarRejected", func(t *testing.T) {
		seminar := models.Seminar{Name: "rust", Capacity: 10, Count: 5, Time: "11:00"}
		if err := engine.CreateSeminar(instructor.ID, &seminar); !errors.Is(err, ErrAlreadyCharged) {
			t.Fatalf("expected ErrAlreadyCharged, got %v", err)
		}

		var count int64
		db.Model(&models.Seminar{}).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 seminar after rollback, got %d", count)
		}
	})
}

func TestEnrollInstructor(t *testing.T) {
	db := setupDB(t)
	engine := NewEngine(db, false)

	owner := createInstructor(t, db, "owner")
	seminar := openSeminar(t, db, engine, owner, "django", 10)

	t.Run("SetsCharge", func(t *testing.T) {
		other := createInstructor(t, db, "co-inst")
		if err := engine.Enroll(other.ID, seminar.ID, models.RoleInstructor); err != nil {
			t.Fatalf("Enroll returned error: %v", err)
		}

		var profile models.InstructorProfile
		db.Where("user_id = ?", other.ID).First(&profile)
		if profile.ChargeID == nil || *profile.ChargeID != seminar.ID {
			t.Errorf("expected charge %d, got %v", seminar.ID, profile.ChargeID)
		}
	})

	t.Run("ChargedInstructorRejected", func(t *testing.T) {
		second := models.Seminar{Name: "rust", Capacity: 5, Count: 1, Time: "12:00"}
		if err := db.Create(&second).Error; err != nil {
			t.Fatalf("failed to create seminar: %v", err)
		}
		if err := engine.Enroll(owner.ID, second.ID, models.RoleInstructor); !errors.Is(err, ErrAlreadyCharged) {
			t.Fatalf("expected ErrAlreadyCharged, got %v", err)
		}
	})

	t.Run("WithoutInstructorProfileRejected", func(t *testing.T) {
		participant := createParticipant(t, db, "part-only", true)
		if err := engine.Enroll(participant.ID, seminar.ID, models.RoleInstructor); !errors.Is(err, ErrNotInstructor) {
			t.Fatalf("expected ErrNotInstructor, got %v", err)
		}
	})
}

func TestEnrollParticipant(t *testing.T) {
	t.Run("InvalidRole", func(t *testing.T) {
		db := setupDB(t)
		engine := NewEngine(db, false)
		user := createParticipant(t, db, "part1", true)
		if err := engine.Enroll(user.ID, 1, "observer"); !errors.Is(err, ErrRoleInvalid) {
			t.Fatalf("expected ErrRoleInvalid, got %v", err)
		}
	})

	t.Run("Success", func(t *testing.T) {
		db := setupDB(t)
		engine := NewEngine(db, false)
		owner := createInstructor(t, db, "owner")
		seminar := openSeminar(t, db, engine, owner, "django", 10)
		user := createParticipant(t, db, "part1", true)

		if err := engine.Enroll(user.ID, seminar.ID, models.RoleParticipant); err != nil {
			t.Fatalf("Enroll returned error: %v", err)
		}

		var row models.UserSeminar
		if err := db.Where("user_id = ? AND seminar_id = ?", user.ID, seminar.ID).First(&row).Error; err != nil {
			t.Fatalf("expected enrollment row: %v", err)
		}
		if row.Role != models.RoleParticipant || !row.IsActive() || row.DroppedAt != nil {
			t.Errorf("unexpected row state: role=%s status=%s dropped_at=%v", row.Role, row.Status, row.DroppedAt)
		}
	})

	t.Run("CapacityBoundary", func(t *testing.T) {
		db := setupDB(t)
		engine := NewEngine(db, false)
		owner := createInstructor(t, db, "owner")
		seminar := openSeminar(t, db, engine, owner, "django", 1)
		first := createParticipant(t, db, "part1", true)
		second := createParticipant(t, db, "part2", true)

		// Enrolling at exactly capacity succeeds.
		if err := engine.Enroll(first.ID, seminar.ID, models.RoleParticipant); err != nil {
			t.Fatalf("first enrollment should succeed: %v", err)
		}
		if err := engine.Enroll(second.ID, seminar.ID, models.RoleParticipant); !errors.Is(err, ErrCapacityExceeded) {
			t.Fatalf("expected ErrCapacityExceeded, got %v", err)
		}
	})

	t.Run("MissingParticipantProfile", func(t *testing.T) {
		db := setupDB(t)
		engine := NewEngine(db, false)
		owner := createInstructor(t, db, "owner")
		seminar := openSeminar(t, db, engine, owner, "django", 10)
		instructor := createInstructor(t, db, "inst2")

		if err := engine.Enroll(instructor.ID, seminar.ID, models.RoleParticipant); !errors.Is(err, ErrMissingParticipantProfile) {
			t.Fatalf("expected ErrMissingParticipantProfile, got %v", err)
		}
	})

	t.Run("SelfChargeConflict", func(t *testing.T) {
		db := setupDB(t)
		engine := NewEngine(db, false)
		owner := createInstructor(t, db, "owner")
		seminar := openSeminar(t, db, engine, owner, "django", 10)
		profile := models.ParticipantProfile{UserID: owner.ID, University: "SNU", Accepted: true}
		if err := db.Create(&profile).Error; err != nil {
			t.Fatalf("failed to create participant profile: %v", err)
		}

		if err := engine.Enroll(owner.ID, seminar.ID, models.RoleParticipant); !errors.Is(err, ErrSelfChargeConflict) {
			t.Fatalf("expected ErrSelfChargeConflict, got %v", err)
		}
	})

	t.Run("AlreadyEnrolled", func(t *testing.T) {
		db := setupDB(t)
		engine := NewEngine(db, false)
		owner := createInstructor(t, db, "owner")
		seminar := openSeminar(t, db, engine, owner, "django", 10)
		user := createParticipant(t, db, "part1", true)

		if err := engine.Enroll(user.ID, seminar.ID, models.RoleParticipant); err != nil {
			t.Fatalf("Enroll returned error: %v", err)
		}
		if err := engine.Enroll(user.ID, seminar.ID, models.RoleParticipant); !errors.Is(err, ErrAlreadyEnrolled) {
			t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
		}
	})

	t.Run("NotAccepted", func(t *testing.T) {
		db := setupDB(t)
		engine := NewEngine(db, false)
		owner := createInstructor(t, db, "owner")
		seminar := openSeminar(t, db, engine, owner, "django", 10)
		user := createParticipant(t, db, "part1", false)

		if err := engine.Enroll(user.ID, seminar.ID, models.RoleParticipant); !errors.Is(err, ErrNotAccepted) {
			t.Fatalf("expected ErrNotAccepted, got %v", err)
		}
	})

	t.Run("UnknownSeminar", func(t *testing.T) {
		db := setupDB(t)
		engine := NewEngine(db, false)
		user := createParticipant(t, db, "part1", true)
		if err := engine.Enroll(user.ID, 999, models.RoleParticipant); !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Fatalf("expected record not found, got %v", err)
		}
	})
}

func TestDrop(t *testing.T) {
	t.Run("DeactivatesRow", func(t *testing.T) {
		db := setupDB(t)
		engine := NewEngine(db, false)
		owner := createInstructor(t, db, "owner")
		seminar := openSeminar(t, db, engine, owner, "django", 10)
		user := createParticipant(t, db, "part1", true)

		if err := engine.Enroll(user.ID, seminar.ID, models.RoleParticipant); err != nil {
			t.Fatalf("Enroll returned error: %v", err)
		}
		if err := engine.Drop(user.ID, seminar.ID); err != nil {
			t.Fatalf("Drop returned error: %v", err)
		}

		var row models.UserSeminar
		db.Where("user_id = ? AND seminar_id = ?", user.ID, seminar.ID).First(&row)
		if row.IsActive() {
			t.Error("expected row to be dropped")
		}
		if row.DroppedAt == nil {
			t.Error("expected dropped_at to be set")
		}

		// The row survives as history.
		var count int64
		db.Model(&models.UserSeminar{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 enrollment row, got %d", count)
		}
	})

	t.Run("ReEnrollAfterDropRejected", func(t *testing.T) {
		db := setupDB(t)
		engine := NewEngine(db, false)
		owner := createInstructor(t, db, "owner")
		seminar := openSeminar(t, db, engine, owner, "django", 10)
		user := createParticipant(t, db, "part1", true)

		if err := engine.Enroll(user.ID, seminar.ID, models.RoleParticipant); err != nil {
			t.Fatalf("Enroll returned error: %v", err)
		}
		if err := engine.Drop(user.ID, seminar.ID); err != nil {
			t.Fatalf("Drop returned error: %v", err)
		}
		if err := engine.Enroll(user.ID, seminar.ID, models.RoleParticipant); !errors.Is(err, ErrPreviouslyDropped) {
			t.Fatalf("expected ErrPreviouslyDropped, got %v", err)
		}
	})

	t.Run("DropFreesCapacity", func(t *testing.T) {
		db := setupDB(t)
		engine := NewEngine(db, false)
		owner := createInstructor(t, db, "owner")
		seminar := openSeminar(t, db, engine, owner, "django", 1)
		first := createParticipant(t, db, "part1", true)
		second := createParticipant(t, db, "part2", true)

		if err := engine.Enroll(first.ID, seminar.ID, models.RoleParticipant); err != nil {
			t.Fatalf("Enroll returned error: %v", err)
		}
		if err := engine.Enroll(second.ID, seminar.ID, models.RoleParticipant); !errors.Is(err, ErrCapacityExceeded) {
			t.Fatalf("expected ErrCapacityExceeded, got %v", err)
		}
		if err := engine.Drop(first.ID, seminar.ID); err != nil {
			t.Fatalf("Drop returned error: %v", err)
		}
		if err := engine.Enroll(second.ID, seminar.ID, models.RoleParticipant); err != nil {
			t.Fatalf("enrollment after a drop should succeed: %v", err)
		}
	})

	t.Run("InstructorCannotDrop", func(t *testing.T) {
		db := setupDB(t)
		engine := NewEngine(db, false)
		owner := createInstructor(t, db, "owner")
		seminar := openSeminar(t, db, engine, owner, "django", 10)

		if err := engine.Drop(owner.ID, seminar.ID); !errors.Is(err, ErrInstructorCannotDrop) {
			t.Fatalf("expected ErrInstructorCannotDrop, got %v", err)
		}
	})

	t.Run("NeverEnrolled", func(t *testing.T) {
		db := setupDB(t)
		engine := NewEngine(db, false)
		owner := createInstructor(t, db, "owner")
		seminar := openSeminar(t, db, engine, owner, "django", 10)
		user := createParticipant(t, db, "part1", true)

		if err := engine.Drop(user.ID, seminar.ID); !errors.Is(err, ErrNeverEnrolled) {
			t.Fatalf("expected ErrNeverEnrolled, got %v", err)
		}
	})
}

func TestCapacityCountsInstructors(t *testing.T) {
	db := setupDB(t)
	engine := NewEngine(db, true)

	owner := createInstructor(t, db, "owner")
	seminar := openSeminar(t, db, engine, owner, "django", 1)
	user := createParticipant(t, db, "part1", true)

	// The instructor's own active row fills the single slot.
	if err := engine.Enroll(user.ID, seminar.ID, models.RoleParticipant); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestUpdateSeminar(t *testing.T) {
	db := setupDB(t)
	engine := NewEngine(db, false)

	owner := createInstructor(t, db, "owner")
	seminar := openSeminar(t, db, engine, owner, "django", 2)
	first := createParticipant(t, db, "part1", true)
	second := createParticipant(t, db, "part2", true)
	if err := engine.Enroll(first.ID, seminar.ID, models.RoleParticipant); err != nil {
		t.Fatalf("Enroll returned error: %v", err)
	}
	if err := engine.Enroll(second.ID, seminar.ID, models.RoleParticipant); err != nil {
		t.Fatalf("Enroll returned error: %v", err)
	}

	strPtr := func(s string) *string { return &s }
	intPtr := func(n int) *int { return &n }
	boolPtr := func(b bool) *bool { return &b }

	t.Run("NonInstructorRejected", func(t *testing.T) {
		_, err := engine.UpdateSeminar(first.ID, seminar.ID, SeminarUpdate{Name: strPtr("golang")})
		if !errors.Is(err, ErrNotInstructor) {
			t.Fatalf("expected ErrNotInstructor, got %v", err)
		}
	})

	t.Run("BlankNameRejected", func(t *testing.T) {
		_, err := engine.UpdateSeminar(owner.ID, seminar.ID, SeminarUpdate{Name: strPtr("")})
		if !errors.Is(err, ErrBlankName) {
			t.Fatalf("expected ErrBlankName, got %v", err)
		}
	})

	t.Run("CapacityBelowEnrollmentRejected", func(t *testing.T) {
		_, err := engine.UpdateSeminar(owner.ID, seminar.ID, SeminarUpdate{Capacity: intPtr(1)})
		if !errors.Is(err, ErrCapacityBelowEnrollment) {
			t.Fatalf("expected ErrCapacityBelowEnrollment, got %v", err)
		}
	})

	t.Run("PartialUpdateApplies", func(t *testing.T) {
		updated, err := engine.UpdateSeminar(owner.ID, seminar.ID, SeminarUpdate{
			Name:     strPtr("golang"),
			Capacity: intPtr(5),
			Online:   boolPtr(false),
		})
		if err != nil {
			t.Fatalf("UpdateSeminar returned error: %v", err)
		}
		if updated.Name != "golang" || updated.Capacity != 5 || updated.Online {
			t.Errorf("unexpected seminar state: %+v", updated)
		}
		if updated.Count != 2 || updated.Time != "10:00" {
			t.Errorf("untouched fields changed: %+v", updated)
		}
	})
}
