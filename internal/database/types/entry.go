package types

import (
	"time"

	"github.com/uptrace/bun"
)

// EntryKind discriminates the concrete kind of a discussion entry.
// All kinds share the entries table and a single id space.
type EntryKind int16

const (
	KindQuestion EntryKind = 1
	KindAnswer   EntryKind = 2
	KindComment  EntryKind = 3
)

// String returns the lowercase name of the kind.
func (k EntryKind) String() string {
	switch k {
	case KindQuestion:
		return "question"
	case KindAnswer:
		return "answer"
	case KindComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Entry is a single record in the polymorphic content hierarchy.
// Kind-specific columns are null for the kinds that do not use them:
// Title/Slug belong to questions, QuestionID to answers and
// ParentEntryID to comments. Score is denormalized and owned by the
// vote ledger; it always equals the sum of live vote values for the
// entry.
type Entry struct {
	bun.BaseModel `bun:"table:entries,alias:e"`

	ID        int64      `bun:"id,pk,autoincrement"        json:"id"`
	Kind      EntryKind  `bun:"kind,notnull"               json:"kind"`
	AuthorID  int64      `bun:"author_id,notnull"          json:"authorId"`
	CreatedAt time.Time  `bun:"created_at,notnull"         json:"createdAt"`
	EditedAt  *time.Time `bun:"edited_at"                  json:"editedAt,omitempty"`
	DeletedAt time.Time  `bun:"deleted_at,soft_delete,nullzero" json:"deletedAt,omitempty"`
	Score     int64      `bun:"score,notnull,default:0"    json:"score"`
	Content   string     `bun:"content"                    json:"content"`

	// Question-only columns.
	Title string `bun:"title,nullzero" json:"title,omitempty"`
	Slug  string `bun:"slug,nullzero"  json:"slug,omitempty"`

	// Answer-only column: the question this answer belongs to.
	QuestionID int64 `bun:"question_id,nullzero" json:"questionId,omitempty"`

	// Comment-only column: the entry this comment is attached to.
	ParentEntryID int64 `bun:"parent_entry_id,nullzero" json:"parentEntryId,omitempty"`

	Author *User `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
}

// IsDeleted reports whether the entry has been soft-deleted.
func (e *Entry) IsDeleted() bool {
	return !e.DeletedAt.IsZero()
}

// User is the minimal author record carried by assembled views.
// Account management itself lives outside this engine.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Username  string    `bun:"username,notnull"    json:"username"`
	CreatedAt time.Time `bun:"created_at,notnull"  json:"createdAt"`
}

// UserCounts is a user together with read-time content counts.
// The counts are computed by correlated subqueries so they always
// reflect the live underlying data.
type UserCounts struct {
	User `bun:",extend"`

	QuestionCount int `bun:"question_count,scanonly" json:"questionCount"`
	AnswerCount   int `bun:"answer_count,scanonly"   json:"answerCount"`
}

// Tag labels questions. Slug is unique.
type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull"        json:"name"`
	Slug string `bun:"slug,notnull"        json:"slug"`
}

// QuestionTag joins questions to tags.
type QuestionTag struct {
	bun.BaseModel `bun:"table:question_tags,alias:qt"`

	QuestionID int64 `bun:"question_id,pk" json:"questionId"`
	TagID      int64 `bun:"tag_id,pk"      json:"tagId"`
}
