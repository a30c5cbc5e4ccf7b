package backend

// summaryResponse models the station summary returned by the backend.
type summaryResponse struct {
	Station struct {
		ID       string `json:"id"`
		Code     string `json:"code"`
		Name     string `json:"name"`
		Location string `json:"location"`
	} `json:"station"`
	Status string `json:"status"`
	Stats  struct {
		TotalRegistered int `json:"total_registered_tps_voters"`
		TotalCheckedIn  int `json:"total_checked_in"`
		TotalVoted      int `json:"total_voted"`
		TotalNotVoted   int `json:"total_not_voted"`
	} `json:"stats"`
	OpensAt        string  `json:"opens_at"`
	ClosesAt       string  `json:"closes_at"`
	LastActivityAt *string `json:"last_activity_at"`
}

// checkinItem models one queue entry in the backend's listing.
type checkinItem struct {
	CheckinID   int64   `json:"checkin_id"`
	NIM         string  `json:"nim"`
	Name        string  `json:"name"`
	Faculty     string  `json:"faculty"`
	Program     string  `json:"program"`
	Cohort      string  `json:"cohort"`
	Mode        string  `json:"mode"`
	Status      string  `json:"status"`
	CheckinTime string  `json:"checkin_time"`
	VotedTime   *string `json:"voted_time"`
}

// checkinsResponse models the backend queue listing.
type checkinsResponse struct {
	Items []checkinItem `json:"items"`
	Total int           `json:"total"`
}

// createCheckinResponse models a freshly created check-in.
type createCheckinResponse struct {
	CheckinID   int64   `json:"checkin_id"`
	Status      string  `json:"status"`
	CheckinTime string  `json:"checkin_time"`
	VotedTime   *string `json:"voted_time"`
	Voter       struct {
		NIM     string `json:"nim"`
		Name    string `json:"name"`
		Faculty string `json:"faculty"`
		Program string `json:"program"`
		Cohort  string `json:"cohort"`
	} `json:"voter"`
}

// errorResponse models the backend's error body. Some endpoints nest the
// code under "error", some return it flat.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
