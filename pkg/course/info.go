package course

const (
	// Unknown replaces a clock value that could not be read.
	Unknown = "未知"

	// UnknownCourse replaces a lesson title that could not be read.
	UnknownCourse = "未知课程"

	// ElectiveMarker tags optional lessons in the side panel titles.
	ElectiveMarker = "选学"
)

// StudyTimeInfo is the raw clock text of the active lesson.
type StudyTimeInfo struct {
	Studied string
	Total   string
	// Valid is true only when both values were read from the page.
	Valid bool
}

// IndexInfo locates the active lesson among all lesson entries.
type IndexInfo struct {
	// Current is the zero-based index of the active entry, -1 if none.
	Current int
	Total   int
	IsLast  bool
}

// HasActive reports whether an active entry was found.
func (i IndexInfo) HasActive() bool {
	return i.Current >= 0 && i.Current < i.Total
}

// Position returns the one-based position of the active entry.
func (i IndexInfo) Position() int {
	return i.Current + 1
}

// Observation is everything read from the page in one pass.
type Observation struct {
	Course string
	Time   StudyTimeInfo
	Index  IndexInfo
}

func unknownTime() StudyTimeInfo {
	return StudyTimeInfo{Studied: Unknown, Total: Unknown}
}

func unknownIndex() IndexInfo {
	return IndexInfo{Current: -1}
}
