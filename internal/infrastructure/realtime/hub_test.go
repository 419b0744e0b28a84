package realtime_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pedidos-api/internal/infrastructure/realtime"
	"github.com/tu-usuario/pedidos-api/pkg/logger"
)

func newHub() *realtime.Hub {
	return realtime.NewHub(logger.New(logger.Config{Env: "development", Level: "error"}))
}

func newClient(userID, role string) *realtime.Client {
	return &realtime.Client{UserID: userID, Role: role, Send: make(chan []byte, 4)}
}

// recv espera un mensaje del canal del cliente con timeout corto.
func recv(t *testing.T, c *realtime.Client) realtime.Envelope {
	t.Helper()
	select {
	case raw := <-c.Send:
		var env realtime.Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("no llegó ningún mensaje al cliente")
		return realtime.Envelope{}
	}
}

func TestToUser_SoloLlegaAlDestinatario(t *testing.T) {
	hub := newHub()
	alice := newClient("u1", "CUSTOMER")
	bob := newClient("u2", "CUSTOMER")
	hub.Register(alice)
	hub.Register(bob)

	hub.ToUser("u1", "orderStatusChanged", map[string]string{"order_id": "o1"})

	env := recv(t, alice)
	assert.Equal(t, "orderStatusChanged", env.Event)
	assert.Empty(t, bob.Send, "el mensaje no debe llegar a otros usuarios")
}

func TestToRole_LlegaATodaLaSala(t *testing.T) {
	hub := newHub()
	s1 := newClient("u1", "SELLER")
	s2 := newClient("u2", "SELLER")
	courier := newClient("u3", "DELIVERY")
	hub.Register(s1)
	hub.Register(s2)
	hub.Register(courier)

	hub.ToRole("SELLER", "newOrder", map[string]string{"order_id": "o1"})

	assert.Equal(t, "newOrder", recv(t, s1).Event)
	assert.Equal(t, "newOrder", recv(t, s2).Event)
	assert.Empty(t, courier.Send, "otros roles no reciben el evento")
}

func TestUnregister_QuitaDeLasSalas(t *testing.T) {
	hub := newHub()
	c := newClient("u1", "SELLER")
	hub.Register(c)
	assert.Equal(t, 1, hub.CountConnections("user:u1"))
	assert.Equal(t, 1, hub.CountConnections("role:SELLER"))

	hub.Unregister(c)
	assert.Zero(t, hub.CountConnections("user:u1"))
	assert.Zero(t, hub.CountConnections("role:SELLER"))

	// El canal quedó cerrado: emitir después no entrega nada
	hub.ToUser("u1", "orderStatusChanged", nil)
	_, open := <-c.Send
	assert.False(t, open)
}

// Un mismo usuario puede tener varias pestañas abiertas: todas reciben.
func TestToUser_MultiplesConexionesDelMismoUsuario(t *testing.T) {
	hub := newHub()
	tab1 := newClient("u1", "CUSTOMER")
	tab2 := newClient("u1", "CUSTOMER")
	hub.Register(tab1)
	hub.Register(tab2)

	hub.ToUser("u1", "orderStatusChanged", nil)

	assert.Equal(t, "orderStatusChanged", recv(t, tab1).Event)
	assert.Equal(t, "orderStatusChanged", recv(t, tab2).Event)
}

// Cliente con el buffer lleno: el push se descarta sin bloquear el hub.
func TestEmit_BufferLlenoNoBloquea(t *testing.T) {
	hub := newHub()
	slow := newClient("u1", "CUSTOMER")
	hub.Register(slow)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Capacidad 4: los pushes extra se descartan en vez de bloquear
		for i := 0; i < 20; i++ {
			hub.ToUser("u1", "orderStatusChanged", map[string]int{"seq": i})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("el hub se bloqueó con un cliente lento")
	}
	assert.Len(t, slow.Send, 4, "solo cabe lo que permite el buffer")
}

// La desconexión de un cliente es Unregister, nunca cerrar su canal a mano:
// el cliente sale de las salas bajo el lock antes de que se cierre el canal,
// así una emisión concurrente jamás escribe sobre un canal cerrado.
func TestUnregister_EmisionConcurrenteNoEscribeEnCanalCerrado(t *testing.T) {
	hub := newHub()

	for i := 0; i < 50; i++ {
		c := newClient("u1", "CUSTOMER")
		hub.Register(c)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for j := 0; j < 20; j++ {
				hub.ToUser("u1", "orderStatusChanged", nil)
			}
		}()
		hub.Unregister(c)
		<-done
	}

	// Con el cliente ya fuera de las salas, emitir sigue siendo seguro
	assert.NotPanics(t, func() {
		hub.ToUser("u1", "orderStatusChanged", nil)
	})
}

func TestRegister_DobleUnregisterEsSeguro(t *testing.T) {
	hub := newHub()
	c := newClient("u1", "SELLER")
	hub.Register(c)

	hub.Unregister(c)
	// La salida del bucle de lectura también cierra al cliente
	assert.NotPanics(t, func() {
		c.Close()
		hub.Unregister(c)
	})
}
