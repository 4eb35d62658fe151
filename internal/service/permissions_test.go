package service

import (
	"testing"

	"github.com/Almer24/it-ticketing-system/internal/models"
)

func TestResolveCapabilities(t *testing.T) {
	tests := []struct {
		name        string
		role        string
		itCanManage bool
		wantStaff   bool
	}{
		{"admin", models.RoleAdmin, true, true},
		{"admin regardless of it flag", models.RoleAdmin, false, true},
		{"it with authority", models.RoleIT, true, true},
		{"it without authority", models.RoleIT, false, false},
		{"plain user", models.RoleUser, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := ResolveCapabilities(Actor{ID: "u-1", Role: tt.role}, tt.itCanManage)
			if caps.ManageTickets != tt.wantStaff {
				t.Errorf("ManageTickets = %v, want %v", caps.ManageTickets, tt.wantStaff)
			}
			if caps.ManageUsers != tt.wantStaff {
				t.Errorf("ManageUsers = %v, want %v", caps.ManageUsers, tt.wantStaff)
			}
			if caps.ViewAll != tt.wantStaff {
				t.Errorf("ViewAll = %v, want %v", caps.ViewAll, tt.wantStaff)
			}
		})
	}
}

func TestTicketScopedCapabilities(t *testing.T) {
	own := &models.Ticket{ID: "t-1", CreatedBy: "u-1"}
	foreign := &models.Ticket{ID: "t-2", CreatedBy: "u-2"}

	user := ResolveCapabilities(Actor{ID: "u-1", Role: models.RoleUser}, true)
	if !user.CanViewTicket(own) || !user.CanModifyTicket(own) {
		t.Errorf("creator lost rights on own ticket")
	}
	if user.CanViewTicket(foreign) || user.CanModifyTicket(foreign) {
		t.Errorf("plain user can touch a foreign ticket")
	}

	staff := ResolveCapabilities(Actor{ID: "u-9", Role: models.RoleAdmin}, true)
	if !staff.CanViewTicket(foreign) || !staff.CanModifyTicket(foreign) {
		t.Errorf("staff missing rights on foreign ticket")
	}
}
