package model

// VideoSignal is the caller-owned metadata record a score is computed from.
// Count fields are pointers so that an absent value can be told apart from
// zero; source scoring refuses to run on absent counts.
type VideoSignal struct {
	VideoID         string `json:"videoId,omitempty" yaml:"videoId,omitempty"`
	ChannelID       string `json:"channelId,omitempty" yaml:"channelId,omitempty"`
	ChannelTitle    string `json:"channelTitle,omitempty" yaml:"channelTitle,omitempty"`
	SubscriberCount *int64 `json:"subscriberCount" yaml:"subscriberCount"`
	ChannelAgeDays  *int64 `json:"channelAgeDays" yaml:"channelAgeDays"`
	ViewCount       *int64 `json:"viewCount" yaml:"viewCount"`
	LikeCount       *int64 `json:"likeCount" yaml:"likeCount"`
	CommentCount    *int64 `json:"commentCount" yaml:"commentCount"`
	Title           string `json:"title" yaml:"title"`
	Description     string `json:"description" yaml:"description"`
}

// Count returns a pointer to v, for building signals.
func Count(v int64) *int64 {
	return &v
}
