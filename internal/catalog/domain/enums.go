package domain

// SourceType says where a video's bytes come from.
type SourceType string

const (
	Streaming  SourceType = "streaming"
	Local      SourceType = "local"
	Downloaded SourceType = "downloaded"
)

// AvailableOffline reports whether a source of this type is playable
// without a network connection. Derived, never stored.
func (s SourceType) AvailableOffline() bool {
	return s == Local || s == Downloaded
}

func (s SourceType) Valid() bool {
	switch s {
	case Streaming, Local, Downloaded:
		return true
	}
	return false
}

// ProgressStatus tracks how far along the user is with a technique.
type ProgressStatus string

const (
	NotSeen    ProgressStatus = "not-seen"
	Seen       ProgressStatus = "seen"
	InProgress ProgressStatus = "in-progress"
	Mastered   ProgressStatus = "mastered"
	ToReview   ProgressStatus = "to-review"
)

// ProgressStatuses lists every status in display order.
var ProgressStatuses = []ProgressStatus{NotSeen, Seen, InProgress, Mastered, ToReview}

func (p ProgressStatus) Valid() bool {
	switch p {
	case NotSeen, Seen, InProgress, Mastered, ToReview:
		return true
	}
	return false
}

// GiType is the training attire context of a technique.
type GiType string

const (
	Gi     GiType = "gi"
	NoGi   GiType = "no-gi"
	BothGi GiType = "both"
)

func (g GiType) Valid() bool {
	switch g {
	case Gi, NoGi, BothGi:
		return true
	}
	return false
}

// TechniqueLevel grades difficulty.
type TechniqueLevel string

const (
	Beginner     TechniqueLevel = "beginner"
	Intermediate TechniqueLevel = "intermediate"
	Advanced     TechniqueLevel = "advanced"
)

func (l TechniqueLevel) Valid() bool {
	switch l {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// VideoType classifies the kind of footage.
type VideoType string

const (
	Instructional VideoType = "instructional"
	Highlight     VideoType = "highlight"
	Sparring      VideoType = "sparring"
	Competition   VideoType = "competition"
	Drill         VideoType = "drill"
)

func (v VideoType) Valid() bool {
	switch v {
	case Instructional, Highlight, Sparring, Competition, Drill:
		return true
	}
	return false
}
