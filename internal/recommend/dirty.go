package recommend

import "sync"

// Coordinator lleva por usuario qué componentes de score están pendientes de
// recálculo, y serializa los recálculos: como mucho uno en vuelo por usuario.
type Coordinator struct {
	mu      sync.Mutex
	pending map[int]ComponentSet
	locks   map[int]*sync.Mutex
}

func NewCoordinator() *Coordinator {
	return &Coordinator{
		pending: map[int]ComponentSet{},
		locks:   map[int]*sync.Mutex{},
	}
}

// Mark agrega componentes al conjunto pendiente del usuario.
func (c *Coordinator) Mark(userID int, set ComponentSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[userID] = c.pending[userID].Union(set)
}

// Pending devuelve el conjunto pendiente actual del usuario.
func (c *Coordinator) Pending(userID int) ComponentSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[userID]
}

// Clear descuenta los componentes ya recalculados. Solo quita los bits del
// conjunto con el que se recalculó: una marca que llegó durante el recálculo
// no se pierde, queda pendiente para la siguiente petición.
func (c *Coordinator) Clear(userID int, done ComponentSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rest := c.pending[userID] &^ done
	if rest.Empty() {
		delete(c.pending, userID)
		return
	}
	c.pending[userID] = rest
}

// Lock toma el mutex del usuario y devuelve su unlock. Lo toman tanto el
// recálculo como las operaciones de registro: una valoración no puede
// escribir ni marcar a mitad de un recálculo en vuelo. Usuarios distintos no
// se bloquean entre sí.
func (c *Coordinator) Lock(userID int) func() {
	c.mu.Lock()
	m, ok := c.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		c.locks[userID] = m
	}
	c.mu.Unlock()

	m.Lock()
	return m.Unlock
}
