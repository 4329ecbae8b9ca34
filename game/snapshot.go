package game

// PlayerSnapshot is the immutable per-entity packet handed to renderers,
// the spectator stream and the recorder. It is produced on demand and never
// references live simulation state.
type PlayerSnapshot struct {
	ID      string    `json:"id"`
	X       int32     `json:"x"`
	Y       int32     `json:"y"`
	Width   int32     `json:"width"`
	Height  int32     `json:"height"`
	Color   string    `json:"color"`
	Alive   bool      `json:"alive"`
	Jumping bool      `json:"jumping"`
	Boosts  int32     `json:"boosts"`
	Trail   []Segment `json:"trail"`
}

// PowerUpSnapshot mirrors one active collectible.
type PowerUpSnapshot struct {
	X      int32  `json:"x"`
	Y      int32  `json:"y"`
	Kind   string `json:"kind"`
	Radius int32  `json:"radius"`
}

// BossSnapshot mirrors the boss state in boss modes. Nil when absent.
type BossSnapshot struct {
	Health    int32 `json:"health"`
	MaxHealth int32 `json:"max_health"`
	Alive     bool  `json:"alive"`
}

// MatchSnapshot is one full frame of a running match.
type MatchSnapshot struct {
	Tick     int64             `json:"tick"`
	Width    int32             `json:"width"`
	Height   int32             `json:"height"`
	Score    int32             `json:"score"`
	Level    int32             `json:"level"`
	Players  []PlayerSnapshot  `json:"players"`
	PowerUps []PowerUpSnapshot `json:"power_ups,omitempty"`
	Boss     *BossSnapshot     `json:"boss,omitempty"`
}
