package types

// CommentView is a comment decorated for display.
type CommentView struct {
	*Entry

	ContentHTML string `json:"contentHtml"`
	ViewerVote  *Vote  `json:"viewerVote,omitempty"`
}

// AnswerView is an answer with its comments, decorated for display.
type AnswerView struct {
	*Entry

	ContentHTML string         `json:"contentHtml"`
	ViewerVote  *Vote          `json:"viewerVote,omitempty"`
	Comments    []*CommentView `json:"comments"`
}

// QuestionView is the fully assembled question tree: the question,
// its answers, every comment on the question or an answer, the
// viewing user's vote on each of those entries, and the approximate
// unique view count.
type QuestionView struct {
	*Entry

	ContentHTML string         `json:"contentHtml"`
	ViewerVote  *Vote          `json:"viewerVote,omitempty"`
	Tags        []*Tag         `json:"tags"`
	Answers     []*AnswerView  `json:"answers"`
	Comments    []*CommentView `json:"comments"`
	ViewCount   int64          `json:"viewCount"`
}

// QuestionSummary is one row of a question list. AnswerCount is
// computed at read time from the live answer rows; ViewCount comes
// from the counter store in one batched call per page.
type QuestionSummary struct {
	Entry

	AnswerCount int    `bun:"answer_count,scanonly" json:"answerCount"`
	Tags        []*Tag `bun:"-"                     json:"tags"`
	ViewCount   int64  `bun:"-"                     json:"viewCount"`
}
