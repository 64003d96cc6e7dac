package models

// CourseSource identifies the origin a candidate was discovered on.
type CourseSource string

const (
	SourceRealDiscount  CourseSource = "realdiscount"
	SourceDiscudemy     CourseSource = "discudemy"
	SourceCourseVania   CourseSource = "coursevania"
	SourceUdemyFreebies CourseSource = "udemyfreebies"
)

// CourseCandidate is a raw (title, url) pair produced by a source adapter
// before normalization and validation. Title may be empty or truncated.
type CourseCandidate struct {
	Title  string
	RawURL string
	Source CourseSource
}

// ConfirmedCourse is a candidate that survived normalization, intra-run
// deduplication, coupon validation and the history filter.
type ConfirmedCourse struct {
	Title  string
	URL    string
	Source CourseSource
}
