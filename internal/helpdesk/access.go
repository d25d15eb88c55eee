package helpdesk

// CanAccess reports whether user may open ticket. Admins see everything;
// closed and campaign tickets are readable from any queue; otherwise the
// ticket's queue must be among the user's queues.
func CanAccess(user *User, ticket *Ticket) bool {
	if ticket == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	if ticket.Status == StatusClosed || ticket.Status == StatusCampaign {
		return true
	}
	return user.HasQueue(ticket.QueueID)
}
