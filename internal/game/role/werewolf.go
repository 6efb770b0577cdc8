package role

// WerewolfRole: infinite power (the kill vote has no power gate, only a
// per-night mana gate), shared kill target resolved by the actor's Kill
// command handler, not by an automatic night hook.
type WerewolfRole struct {
	Base
	nm NightMana
}

func NewWerewolf(playerID int64) *WerewolfRole {
	r := &WerewolfRole{Base: NewBase(playerID)}
	r.nm.ResetNightMana()
	return r
}

func (w *WerewolfRole) Name() Name           { return Werewolf }
func (w *WerewolfRole) Power() bool          { return true }
func (w *WerewolfRole) Mana() bool           { return w.nm.Mana() }
func (w *WerewolfRole) UseMana()             { w.nm.UseMana() }
func (w *WerewolfRole) ResetNightMana()      { w.nm.ResetNightMana() }
func (w *WerewolfRole) OnSeer() *bool        { t := true; return &t }
func (w *WerewolfRole) OnStartGame(p Poster) { DefaultOnStartGame(w, p) }
