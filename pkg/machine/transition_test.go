package machine

import (
	"testing"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_Table(t *testing.T) {
	tests := []struct {
		name    string
		state   domain.State
		input   string
		next    domain.State
		message domain.MessageKey
		updates domain.Fields
	}{
		{
			name:    "New Greets Regardless Of Input",
			state:   domain.StateNew,
			input:   "Hola",
			next:    domain.StateAwaitingName,
			message: domain.MessageNew,
		},
		{
			name:    "New With Empty Text",
			state:   domain.StateNew,
			input:   "",
			next:    domain.StateAwaitingName,
			message: domain.MessageNew,
		},
		{
			name:    "Full Name",
			state:   domain.StateAwaitingName,
			input:   "María López",
			next:    domain.StateAwaitingHonoree,
			message: domain.MessageAwaitingName,
			updates: domain.Fields{FirstName: "María", LastName: "López"},
		},
		{
			name:    "Full Name With Several Surnames",
			state:   domain.StateAwaitingName,
			input:   "Ana  de la   Cruz",
			next:    domain.StateAwaitingHonoree,
			message: domain.MessageAwaitingName,
			updates: domain.Fields{FirstName: "Ana", LastName: "de la Cruz"},
		},
		{
			name:    "Surname Is Not Validated",
			state:   domain.StateAwaitingName,
			input:   "Ana 123",
			next:    domain.StateAwaitingHonoree,
			message: domain.MessageAwaitingName,
			updates: domain.Fields{FirstName: "Ana", LastName: "123"},
		},
		{
			name:    "Single Token Name",
			state:   domain.StateAwaitingName,
			input:   "maria",
			next:    domain.StateAwaitingLastName,
			message: domain.MessageAwaitingLastName,
			updates: domain.Fields{FirstName: "maria"},
		},
		{
			name:    "Invalid First Token",
			state:   domain.StateAwaitingName,
			input:   "M4ria López",
			next:    domain.StateAwaitingName,
			message: domain.MessageInvalidName,
		},
		{
			name:    "Invalid Single Token",
			state:   domain.StateAwaitingName,
			input:   "x",
			next:    domain.StateAwaitingName,
			message: domain.MessageInvalidName,
		},
		{
			name:    "Empty Name",
			state:   domain.StateAwaitingName,
			input:   "",
			next:    domain.StateAwaitingName,
			message: domain.MessageInvalidName,
		},
		{
			name:    "Last Name Accepts Anything",
			state:   domain.StateAwaitingLastName,
			input:   "L0pez!",
			next:    domain.StateAwaitingHonoree,
			message: domain.MessageAwaitingName,
			updates: domain.Fields{LastName: "L0pez!"},
		},
		{
			name:    "Honoree",
			state:   domain.StateAwaitingHonoree,
			input:   "Juan Pérez",
			next:    domain.StateAwaitingRelationship,
			message: domain.MessageAwaitingHonoree,
			updates: domain.Fields{HonoreeName: "Juan Pérez"},
		},
		{
			name:    "Invalid Honoree",
			state:   domain.StateAwaitingHonoree,
			input:   "Juan #2",
			next:    domain.StateAwaitingHonoree,
			message: domain.MessageInvalidName,
		},
		{
			name:    "Relationship",
			state:   domain.StateAwaitingRelationship,
			input:   "mi abuelo",
			next:    domain.StateAwaitingTShirt,
			message: domain.MessageAwaitingRelationship,
			updates: domain.Fields{Relationship: "mi abuelo"},
		},
		{
			name:    "Invalid Relationship",
			state:   domain.StateAwaitingRelationship,
			input:   "?",
			next:    domain.StateAwaitingRelationship,
			message: domain.MessageInvalidName,
		},
		{
			name:    "Shirt Size Case Insensitive",
			state:   domain.StateAwaitingTShirt,
			input:   "grande",
			next:    domain.StateCompleted,
			message: domain.MessageCompleted,
			updates: domain.Fields{TShirtSize: "GRANDE"},
		},
		{
			name:    "Youth Shirt Size",
			state:   domain.StateAwaitingTShirt,
			input:   " Jovenes Chico ",
			next:    domain.StateCompleted,
			message: domain.MessageCompleted,
			updates: domain.Fields{TShirtSize: "JOVENES CHICO"},
		},
		{
			name:    "Unknown Shirt Size",
			state:   domain.StateAwaitingTShirt,
			input:   "XL",
			next:    domain.StateAwaitingTShirt,
			message: domain.MessageInvalidTShirt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Transition(domain.Session{State: tt.state}, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.next, res.Next)
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, tt.updates, res.Updates)
		})
	}
}

func TestTransition_Deterministic(t *testing.T) {
	s := domain.Session{State: domain.StateAwaitingName, ImageURL: "https://example.com/x.png"}
	first, err := Transition(s, "María López")
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		again, err := Transition(s, "María López")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestTransition_RepromptKeepsSession(t *testing.T) {
	validated := []struct {
		state   domain.State
		input   string
		message domain.MessageKey
	}{
		{domain.StateAwaitingName, "123", domain.MessageInvalidName},
		{domain.StateAwaitingHonoree, "@@", domain.MessageInvalidName},
		{domain.StateAwaitingRelationship, "1", domain.MessageInvalidName},
		{domain.StateAwaitingTShirt, "huge", domain.MessageInvalidTShirt},
	}

	for _, v := range validated {
		t.Run(string(v.state), func(t *testing.T) {
			sess := domain.Session{
				State:        v.state,
				FirstName:    "María",
				LastName:     "López",
				HonoreeName:  "Juan",
				Relationship: "mi abuelo",
			}
			before := sess

			res, err := Transition(sess, v.input)
			require.NoError(t, err)
			sess.Apply(res.Updates)
			sess.State = res.Next

			assert.Equal(t, before, sess)
			assert.Equal(t, v.message, res.Message)
			assert.False(t, res.Changed(v.state))
		})
	}
}

func TestTransition_UnknownState(t *testing.T) {
	_, err := Transition(domain.Session{State: "awaiting_pizza"}, "hi")
	assert.ErrorIs(t, err, ErrUnknownState)

	_, err = Transition(domain.Session{State: domain.StateCompleted}, "hi")
	assert.ErrorIs(t, err, ErrUnknownState, "completed sessions are never fed back in")
}

func TestStates_CoverEveryNonTerminalState(t *testing.T) {
	var want []domain.State
	for _, s := range domain.AllStates() {
		if !s.IsTerminal() {
			want = append(want, s)
		}
	}
	assert.Equal(t, want, States())
}

func TestTransition_HappyPath(t *testing.T) {
	sess := domain.NewSession("")
	inputs := []string{"Hola", "maria", "López", "Juan", "mi abuelo", "mediano"}
	for _, in := range inputs {
		res, err := Transition(*sess, in)
		require.NoError(t, err)
		sess.Apply(res.Updates)
		sess.State = res.Next
	}

	assert.Equal(t, domain.StateCompleted, sess.State)
	assert.Equal(t, "maria", sess.FirstName)
	assert.Equal(t, "López", sess.LastName)
	assert.Equal(t, "Juan", sess.HonoreeName)
	assert.Equal(t, "mi abuelo", sess.Relationship)
	assert.Equal(t, "MEDIANO", sess.TShirtSize)
}
