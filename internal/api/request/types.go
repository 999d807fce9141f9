package request

// CredentialsRequest is the request body for signup and login
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the request body for changing a password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// DeleteAccountRequest is the request body for deleting the logged-in account
type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// BanRequest is the request body for banning or unbanning a user
type BanRequest struct {
	Banned bool `json:"banned"`
}

// AnswerRequest is the request body for answering a question.
// Free marks text the player typed instead of picking an option.
type AnswerRequest struct {
	Answer string `json:"answer"`
	Free   bool   `json:"free,omitempty"`
}

// VerifyRequest is the request body for judging the genie's guess
type VerifyRequest struct {
	Correct bool `json:"correct"`
}

// RevealRequest is the request body for revealing the real dish
type RevealRequest struct {
	Answer string `json:"answer"`
}

// VolumeRequest is the request body for setting the master volume (0-100)
type VolumeRequest struct {
	Volume int `json:"volume"`
}

// MuteRequest is the request body for muting or unmuting
type MuteRequest struct {
	Muted bool `json:"muted"`
}

// MusicRequest is the request body for switching tracks. An empty track stops the music.
type MusicRequest struct {
	Track string `json:"track"`
}

// SoundRequest is the request body for playing a one-shot effect
type SoundRequest struct {
	Sound string `json:"sound"`
}

// MatchRequest is the request body for resolving free text to a dish
type MatchRequest struct {
	Text string `json:"text"`
}
