package viewmodel

type Layout struct {
	Page          string
	FromProtected bool
	IsError       bool
	Msg           string
	Email         string
}

// ResetPage is the set-new-password form linked from the reset mail.
type ResetPage struct {
	Layout
	Token string
}
