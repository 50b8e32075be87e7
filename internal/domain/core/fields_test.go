package core

import (
	"testing"

	"skillboard/internal/domain/auth"
)

func TestFilterEmployeeFieldsHRSeesAll(t *testing.T) {
	emp := Employee{NationalID: "AB123", Phone: "555-0100"}
	FilterEmployeeFields(&emp, auth.UserContext{RoleName: auth.RoleHR}, false)
	if emp.NationalID == "" || emp.Phone == "" {
		t.Fatal("HR should see identity fields")
	}
}

func TestFilterEmployeeFieldsSelfSeesOwn(t *testing.T) {
	emp := Employee{NationalID: "AB123", Phone: "555-0100"}
	FilterEmployeeFields(&emp, auth.UserContext{RoleName: auth.RoleEmployee}, true)
	if emp.NationalID == "" {
		t.Fatal("self view should keep identity fields")
	}
}

func TestFilterEmployeeFieldsOthersStripped(t *testing.T) {
	emp := Employee{NationalID: "AB123", Phone: "555-0100"}
	FilterEmployeeFields(&emp, auth.UserContext{RoleName: auth.RoleManager}, false)
	if emp.NationalID != "" || emp.Phone != "" {
		t.Fatal("identity fields should be stripped for non-HR viewers")
	}
}
