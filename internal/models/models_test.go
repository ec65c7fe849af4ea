package models

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestTicket_Fields(t *testing.T) {
	typ := reflect.TypeOf(Ticket{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "ID", "autoIncrement")
	assertGormTag(t, typ, "UserID", "not null")
	assertGormTag(t, typ, "UserID", "index")
	assertGormTag(t, typ, "Category", "not null")
	assertGormTag(t, typ, "Subject", "not null")
	assertGormTag(t, typ, "Description", "type:text")
	assertGormTag(t, typ, "Status", "default:open")
	assertGormTag(t, typ, "Status", "index")

	// AssignedAdmin and ClosedAt are nullable.
	assertFieldType(t, typ, "AssignedAdmin", "*string")
	assertFieldType(t, typ, "ClosedAt", "*time.Time")
	assertFieldType(t, typ, "CreatedAt", "time.Time")
	assertFieldType(t, typ, "UpdatedAt", "time.Time")
}

func TestTicket_Associations(t *testing.T) {
	typ := reflect.TypeOf(Ticket{})
	assertGormTag(t, typ, "Messages", "foreignKey:TicketID")
	assertGormTag(t, typ, "Photos", "foreignKey:TicketID")
}

func TestTicketMessage_Fields(t *testing.T) {
	typ := reflect.TypeOf(TicketMessage{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "TicketID", "not null")
	assertGormTag(t, typ, "TicketID", "index")
	assertGormTag(t, typ, "Body", "type:text")
	assertGormTag(t, typ, "Kind", "default:text")
	assertGormTag(t, typ, "FromAdmin", "default:false")
	assertFieldType(t, typ, "CreatedAt", "time.Time")
}

func TestTicketPhoto_Fields(t *testing.T) {
	typ := reflect.TypeOf(TicketPhoto{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "TicketID", "not null")
	assertGormTag(t, typ, "TicketID", "index")
	assertGormTag(t, typ, "Path", "uniqueIndex")
	assertFieldType(t, typ, "Size", "int64")
}

func TestCleanupJob_Fields(t *testing.T) {
	typ := reflect.TypeOf(CleanupJob{})

	assertGormTag(t, typ, "TicketID", "uniqueIndex")
	assertGormTag(t, typ, "ScheduledAt", "not null")
	assertGormTag(t, typ, "Status", "default:scheduled")
	assertFieldType(t, typ, "ExecutedAt", "*time.Time")
	assertFieldType(t, typ, "FilesCleaned", "int")
}

func TestCategory_Fields(t *testing.T) {
	typ := reflect.TypeOf(Category{})

	assertGormTag(t, typ, "Name", "uniqueIndex")
	assertGormTag(t, typ, "Name", "not null")
	assertGormTag(t, typ, "Description", "type:text")
}

func TestAdmin_Fields(t *testing.T) {
	typ := reflect.TypeOf(Admin{})

	assertGormTag(t, typ, "UserID", "primaryKey")
	assertGormTag(t, typ, "Role", "default:admin")
	assertFieldType(t, typ, "AddedAt", "time.Time")
}

func TestStatusConstants(t *testing.T) {
	if TicketOpen != "open" || TicketClosed != "closed" {
		t.Errorf("ticket status constants = %q/%q, want open/closed", TicketOpen, TicketClosed)
	}
	if CleanupScheduled != "scheduled" || CleanupCompleted != "completed" {
		t.Errorf("cleanup status constants = %q/%q, want scheduled/completed", CleanupScheduled, CleanupCompleted)
	}
	if RoleAdmin != "admin" || RoleMainAdmin != "main_admin" {
		t.Errorf("role constants = %q/%q, want admin/main_admin", RoleAdmin, RoleMainAdmin)
	}
}

func TestTicket_ZeroValueIsOpenLifecycle(t *testing.T) {
	// A freshly created ticket carries no closure timestamp until closed.
	var tk Ticket
	if tk.ClosedAt != nil {
		t.Error("zero Ticket.ClosedAt should be nil")
	}
	tk.ClosedAt = &time.Time{}
	if tk.ClosedAt == nil {
		t.Error("ClosedAt should be settable")
	}
}
