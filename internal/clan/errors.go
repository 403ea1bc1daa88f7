package clan

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors. Handlers map these onto the ephemeral replies the users
// see; anything not in this list is treated as an external-call failure.
var (
	ErrSubclanNotFound     = errors.New("subclan not found")
	ErrSubclanExists       = errors.New("subclan with this name already exists")
	ErrNotLeader           = errors.New("only the subclan leader may do this")
	ErrNotLeaderOrOfficer  = errors.New("leader or officer role required")
	ErrOfficerRoleNotSet   = errors.New("officer role is not configured")
	ErrOfficerRoleRequired = errors.New("officer role required")
	ErrSubclanFull         = errors.New("subclan member limit reached")
	ErrAlreadyInThis       = errors.New("already a member of this subclan")
	ErrLeaderCannotLeave   = errors.New("the leader cannot leave their own subclan")
	ErrCannotKickLeader    = errors.New("the leader cannot be kicked")
	ErrNotInSubclan        = errors.New("not a member of this subclan")
	ErrAlreadyOfficer      = errors.New("already an officer")
	ErrNotOfficer          = errors.New("not an officer")
	ErrLeaderRoleImmutable = errors.New("the leader role cannot be touched")
	ErrRoleNotInSubclan    = errors.New("role does not belong to this subclan")
	ErrCoreChannel         = errors.New("core subclan channels cannot be deleted")
	ErrChannelNotInSubclan = errors.New("channel does not belong to this subclan")
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("application already pending")
	ErrAlreadyClanMember   = errors.New("already a clan member")
	ErrNotClanMember       = errors.New("not a clan member")
	ErrMaxBelowCurrent     = errors.New("new member limit is below the current member count")
)

// AlreadyInSubclanError reports membership in a different subclan that
// blocks the attempted operation.
type AlreadyInSubclanError struct {
	Subclan string
}

func (e *AlreadyInSubclanError) Error() string {
	return fmt.Sprintf("already a member of subclan %q", e.Subclan)
}

// AlreadyLeadsError reports that the actor already created a subclan.
type AlreadyLeadsError struct {
	Subclan string
}

func (e *AlreadyLeadsError) Error() string {
	return fmt.Sprintf("already leads subclan %q", e.Subclan)
}

// CooldownError reports an active re-entry cooldown.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active for another %s", e.Remaining)
}

// ChannelNotAllowedError reports a submission from outside the allow-list.
type ChannelNotAllowedError struct {
	Allowed []string
}

func (e *ChannelNotAllowedError) Error() string {
	return "channel is not in the application allow-list"
}

// ProvisionError wraps a failure while creating or deleting external
// platform resources.
type ProvisionError struct {
	Op  string
	Err error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }
