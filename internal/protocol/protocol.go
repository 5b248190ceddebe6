// Package protocol defines the JSON message envelopes and payloads exchanged
// between the habitsync agent and the sync server over a websocket connection.
// Requests carry a client-generated id; the server answers with a response
// bearing the same id, or pushes an unsolicited notification with an empty id.
package protocol

import (
	"encoding/json"
	"time"
)

// Method names understood by the server.
const (
	MethodSignIn  = "signin"
	MethodRefresh = "refresh"
	MethodPing    = "ping"
	MethodFlagGet = "flag_get"
	MethodFlagSet = "flag_set"
	MethodPull    = "pull"
	MethodPush    = "push"

	// MethodChange is the server-push notification emitted to an account's
	// other connections after any mutating call.
	MethodChange = "change"
)

// Error codes carried in Error.Code.
const (
	CodeBadRequest   = 400
	CodeUnauthorized = 401
	CodeTokenExpired = 419
	CodeNotFound     = 404
	CodeInternal     = 500
)

// FlagOnboardingCompleted is the account-scoped flag key marking that
// onboarding has been completed on some device.
const FlagOnboardingCompleted = "onboarding_completed"

// Request is a single RPC call from agent to server.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Token  string          `json:"token,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response answers a Request (ID set) or carries a push notification
// (ID empty, Method set).
type Response struct {
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Error  *Error          `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// Error is an RPC-level failure.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

type SignInParams struct {
	Account    string `json:"account"`
	Passphrase string `json:"passphrase"`
	DeviceID   string `json:"device_id"`
}

type RefreshParams struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type PingResult struct {
	Status string `json:"status"`
}

type FlagGetParams struct {
	Key string `json:"key"`
}

type FlagSetParams struct {
	Key   string `json:"key"`
	Value bool   `json:"value"`
}

// FlagValue is an account-scoped boolean flag row. Last writer wins.
type FlagValue struct {
	Key       string    `json:"key"`
	Value     bool      `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Habit struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

type Profile struct {
	Name     string `json:"name"`
	Gender   string `json:"gender,omitempty"`
	AgeGroup string `json:"age_group,omitempty"`
}

type PullParams struct {
	SinceVersion int64 `json:"since_version"`
}

// Snapshot is the full account state served by pull. The agent overwrites its
// local cache with it; partial propagation on the server side simply yields a
// snapshot with fewer rows, which the convergence loop retries around.
type Snapshot struct {
	Habits  []Habit     `json:"habits"`
	Profile *Profile    `json:"profile,omitempty"`
	Flags   []FlagValue `json:"flags"`
	Version int64       `json:"version"`
}

type PushParams struct {
	Habits  []Habit  `json:"habits,omitempty"`
	Profile *Profile `json:"profile,omitempty"`
}

type PushResult struct {
	Version int64 `json:"version"`
}

// ChangeEvent is the payload of a MethodChange notification.
type ChangeEvent struct {
	Scope   string `json:"scope"` // "flags" or "data"
	Version int64  `json:"version"`
}

// Marshal encodes v for use as Request.Params or Response.Result.
func Marshal(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
