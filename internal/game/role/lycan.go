package role

// LycanRole is a villager-aligned variant that appears as a wolf to the
// Seer: no power, no mana, no command of its own.
type LycanRole struct{ Base }

func NewLycan(playerID int64) *LycanRole {
	return &LycanRole{Base: NewBase(playerID)}
}

func (l *LycanRole) Name() Name           { return Lycan }
func (l *LycanRole) OnSeer() *bool        { t := true; return &t }
func (l *LycanRole) OnStartGame(p Poster) { DefaultOnStartGame(l, p) }
