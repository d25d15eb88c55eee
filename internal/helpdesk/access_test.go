package helpdesk

import "testing"

func TestCanAccess(t *testing.T) {
	agent := &User{ID: 1, Profile: "user", Queues: []Queue{{ID: 10}, {ID: 11}}}
	admin := &User{ID: 2, Profile: "admin"}

	tests := []struct {
		name   string
		user   *User
		ticket *Ticket
		want   bool
	}{
		{"permitted queue open", agent, &Ticket{QueueID: 10, Status: StatusOpen}, true},
		{"permitted queue pending", agent, &Ticket{QueueID: 11, Status: StatusPending}, true},
		{"foreign queue open", agent, &Ticket{QueueID: 99, Status: StatusOpen}, false},
		{"foreign queue pending", agent, &Ticket{QueueID: 99, Status: StatusPending}, false},
		{"foreign queue unknown status", agent, &Ticket{QueueID: 99, Status: "group"}, false},
		{"foreign queue closed", agent, &Ticket{QueueID: 99, Status: StatusClosed}, true},
		{"foreign queue campaign", agent, &Ticket{QueueID: 99, Status: StatusCampaign}, true},
		{"no queue open", agent, &Ticket{Status: StatusOpen}, false},
		{"admin foreign queue open", admin, &Ticket{QueueID: 99, Status: StatusOpen}, true},
		{"admin no queue pending", admin, &Ticket{Status: StatusPending}, true},
		{"nil user open", nil, &Ticket{QueueID: 10, Status: StatusOpen}, false},
		{"nil user closed", nil, &Ticket{QueueID: 10, Status: StatusClosed}, true},
		{"nil ticket", admin, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccess(tt.user, tt.ticket); got != tt.want {
				t.Errorf("CanAccess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdminAlwaysGranted(t *testing.T) {
	admin := &User{Profile: "admin"}
	for _, status := range []string{StatusOpen, StatusPending, StatusClosed, StatusCampaign, "group", ""} {
		for _, queue := range []int64{0, 1, 42} {
			if !CanAccess(admin, &Ticket{QueueID: queue, Status: status}) {
				t.Errorf("admin denied queue=%d status=%q", queue, status)
			}
		}
	}
}
