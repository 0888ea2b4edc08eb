package model

// FeedType selects which ordering and filter a feed uses.
type FeedType string

const (
	FeedTop  FeedType = "top"
	FeedNew  FeedType = "new"
	FeedBest FeedType = "best"
	FeedShow FeedType = "show"
	FeedAsk  FeedType = "ask"
	FeedJob  FeedType = "job"
	// FeedShowNew is the newest-first Show HN listing. Pages only.
	FeedShowNew FeedType = "shownew"
)

// Valid reports whether t is a known feed type.
func (t FeedType) Valid() bool {
	switch t {
	case FeedTop, FeedNew, FeedBest, FeedShow, FeedAsk, FeedJob, FeedShowNew:
		return true
	}
	return false
}
