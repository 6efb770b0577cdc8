package role

// FoxRole has no power, no mana and no command of its own: inspection by
// a Seer is lethal to it (handled by the Seer command handler, which
// checks OnSeer() for the explicit "false" the Fox alone returns).
type FoxRole struct{ Base }

func NewFox(playerID int64) *FoxRole {
	return &FoxRole{Base: NewBase(playerID)}
}

func (f *FoxRole) Name() Name { return Fox }
func (f *FoxRole) OnSeer() *bool {
	b := false
	return &b
}
func (f *FoxRole) OnStartGame(p Poster) { DefaultOnStartGame(f, p) }
