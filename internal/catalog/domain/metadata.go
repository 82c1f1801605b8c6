package domain

// Presentation metadata for enum variants. Kept out of the entities:
// the UI asks these lookup functions, the catalog never stores icons
// or colors per record.

func (s SourceType) Icon() string {
	switch s {
	case Streaming:
		return "wifi"
	case Local:
		return "iphone"
	case Downloaded:
		return "arrow.down.circle.fill"
	}
	return "questionmark"
}

func (p ProgressStatus) Icon() string {
	switch p {
	case NotSeen:
		return "circle"
	case Seen:
		return "eye.fill"
	case InProgress:
		return "arrow.triangle.2.circlepath"
	case Mastered:
		return "checkmark.circle.fill"
	case ToReview:
		return "arrow.counterclockwise"
	}
	return "questionmark"
}

func (p ProgressStatus) Color() string {
	switch p {
	case NotSeen:
		return "gray"
	case Seen:
		return "blue"
	case InProgress:
		return "orange"
	case Mastered:
		return "green"
	case ToReview:
		return "purple"
	}
	return "gray"
}

func (g GiType) Icon() string {
	switch g {
	case Gi:
		return "tshirt.fill"
	case NoGi:
		return "figure.wrestling"
	case BothGi:
		return "arrow.left.arrow.right"
	}
	return "questionmark"
}

func (l TechniqueLevel) Color() string {
	switch l {
	case Beginner:
		return "white"
	case Intermediate:
		return "blue"
	case Advanced:
		return "purple"
	}
	return "gray"
}

func (v VideoType) Icon() string {
	switch v {
	case Instructional:
		return "book.fill"
	case Highlight:
		return "star.fill"
	case Sparring:
		return "figure.martial.arts"
	case Competition:
		return "trophy.fill"
	case Drill:
		return "repeat"
	}
	return "questionmark"
}
