package role

// SuperwolfRole is wired identically to Werewolf (shares the kill vote,
// the Werewolf channel, and the seer-reveals-as-wolf rule); it is a
// distinct variant so allocator tables can give it its own count.
type SuperwolfRole struct {
	Base
	nm NightMana
}

func NewSuperwolf(playerID int64) *SuperwolfRole {
	r := &SuperwolfRole{Base: NewBase(playerID)}
	r.nm.ResetNightMana()
	return r
}

func (w *SuperwolfRole) Name() Name           { return Superwolf }
func (w *SuperwolfRole) Power() bool          { return true }
func (w *SuperwolfRole) Mana() bool           { return w.nm.Mana() }
func (w *SuperwolfRole) UseMana()             { w.nm.UseMana() }
func (w *SuperwolfRole) ResetNightMana()      { w.nm.ResetNightMana() }
func (w *SuperwolfRole) OnSeer() *bool        { t := true; return &t }
func (w *SuperwolfRole) OnStartGame(p Poster) { DefaultOnStartGame(w, p) }
