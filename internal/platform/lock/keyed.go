package lock

import "sync"

// Keyed serializa secciones críticas por clave arbitraria.
// Se usa para cerrar la carrera check-then-act al validar solapamiento
// de citas: la clave es (userID, fecha). Vale para una sola instancia
// del proceso; con múltiples réplicas haría falta un lock en el storage.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[string]*entry)}
}

// Lock toma el lock de la clave y devuelve su unlock.
func (k *Keyed) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
