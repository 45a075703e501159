package model

// Streak mirrors the remote streaks row for a user. Current counts
// consecutive calendar days ending at LastDate; it is always recomputed
// from the full check-in history, never patched incrementally.
type Streak struct {
	UserID   string  `db:"user_id" json:"user_id"`
	Current  int     `db:"current" json:"current"`
	Longest  int     `db:"longest" json:"longest"`
	LastDate *string `db:"last_date" json:"last_date"`
}

type TreeStage string

const (
	StageSprout  TreeStage = "sprout"
	StageSapling TreeStage = "sapling"
	StageYoung   TreeStage = "young"
	StageMature  TreeStage = "mature"
	StageAncient TreeStage = "ancient"
)

type TreeVariant string

const (
	VariantHealthy TreeVariant = "healthy"
	VariantWilting TreeVariant = "wilting"
)

// TreeVisual is derived from (current streak, broke-yesterday) and never
// persisted.
type TreeVisual struct {
	Stage   TreeStage   `json:"stage"`
	Variant TreeVariant `json:"variant"`
}

// StreakStatus is what the UI renders on the home screen: the raw streak
// plus its tree representation.
type StreakStatus struct {
	Streak         Streak     `json:"streak"`
	Tree           TreeVisual `json:"tree"`
	BrokeYesterday bool       `json:"broke_yesterday"`
	Label          string     `json:"label"`
}
