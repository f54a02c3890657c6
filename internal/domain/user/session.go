package user

// AuthState is the persisted name of a session state.
type AuthState string

const (
	AuthStateAwaitingUsername AuthState = "awaiting_username"
	AuthStateAwaitingPassword AuthState = "awaiting_password"
	AuthStateAuthenticated    AuthState = "authenticated"
)

// Session is the live chat login state. Each variant carries only the
// fields that are meaningful in that state.
type Session interface {
	State() AuthState
}

// AwaitingUsername is the initial state for a phone number.
type AwaitingUsername struct{}

// AwaitingPassword holds the username typed in the previous turn. Returning
// is set when the username already belongs to this phone, so the password is
// verified instead of registered.
type AwaitingPassword struct {
	StagedUsername string
	Returning      bool
}

// Authenticated routes input to the command router.
type Authenticated struct{}

// UnknownSession wraps a stored state value that is not recognised.
type UnknownSession struct {
	Raw string
}

func (AwaitingUsername) State() AuthState { return AuthStateAwaitingUsername }
func (AwaitingPassword) State() AuthState { return AuthStateAwaitingPassword }
func (Authenticated) State() AuthState    { return AuthStateAuthenticated }
func (s UnknownSession) State() AuthState { return AuthState(s.Raw) }

// EncodeSession flattens a session into its stored columns.
func EncodeSession(s Session) (state AuthState, tempUsername *string) {
	if s == nil {
		return AuthStateAwaitingUsername, nil
	}
	if p, ok := s.(AwaitingPassword); ok {
		staged := p.StagedUsername
		return AuthStateAwaitingPassword, &staged
	}
	return s.State(), nil
}

// DecodeSession rebuilds a session from its stored columns. The returning
// flag is derived from whether the staged name matches the committed one.
func DecodeSession(state string, tempUsername, username *string) Session {
	switch AuthState(state) {
	case AuthStateAwaitingUsername:
		return AwaitingUsername{}
	case AuthStateAwaitingPassword:
		if tempUsername == nil || *tempUsername == "" {
			return UnknownSession{Raw: state}
		}
		returning := username != nil && *username == *tempUsername
		return AwaitingPassword{StagedUsername: *tempUsername, Returning: returning}
	case AuthStateAuthenticated:
		return Authenticated{}
	}
	return UnknownSession{Raw: state}
}
