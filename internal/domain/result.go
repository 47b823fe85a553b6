package domain

// Outcome is the business result of a directory operation. Failures that are not
// business results (transient storage errors, corruption) travel as Go errors.
type Outcome string

const (
	OutcomeOK                Outcome = "ok"
	OutcomeAlreadyRegistered Outcome = "already_registered"
	OutcomeNotRegistered     Outcome = "not_registered"
	OutcomeForbidden         Outcome = "forbidden"
	OutcomeInvalidArgument   Outcome = "invalid_argument"
	OutcomeAlreadyExists     Outcome = "already_exists"
	OutcomeEmptyMessage      Outcome = "empty_message"
	OutcomeEmpty             Outcome = "empty"
)

// Reasons attached to OutcomeInvalidArgument results that callers render
// differently.
const (
	ReasonUnknownGroup     = "unknown group"
	ReasonGroupNameSpace   = "group name contains whitespace"
	ReasonGroupNameTooLong = "group name too long"
	ReasonAnnouncementLong = "announcement too long"
)

func (o Outcome) String() string {
	return string(o)
}

// Result carries the outcome of an operation plus whichever payload applies.
type Result struct {
	Outcome      Outcome
	Reason       string
	Member       *Member
	Members      []*Member
	Group        *Group
	Groups       []*Group
	Announcement *Announcement
}

func (r *Result) OK() bool {
	return r != nil && r.Outcome == OutcomeOK
}

func ResultOf(outcome Outcome) *Result {
	return &Result{Outcome: outcome}
}

func Rejected(outcome Outcome, reason string) *Result {
	return &Result{Outcome: outcome, Reason: reason}
}

// BroadcastReport summarises one fan-out of an announcement to a group.
type BroadcastReport struct {
	BatchID   string
	GroupName string
	Delivered []MemberID
	Failed    map[MemberID]error
}

func (r *BroadcastReport) Attempted() int {
	if r == nil {
		return 0
	}
	return len(r.Delivered) + len(r.Failed)
}
