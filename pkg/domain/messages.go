package domain

// MessageKey identifies an outgoing SMS text.
type MessageKey string

const (
	MessageNew                  MessageKey = "new"
	MessageAwaitingName         MessageKey = "awaiting_name"
	MessageAwaitingLastName     MessageKey = "awaiting_lastname"
	MessageAwaitingHonoree      MessageKey = "awaiting_honoree"
	MessageAwaitingRelationship MessageKey = "awaiting_relationship"
	MessageCompleted            MessageKey = "completed"
	MessageInvalidName          MessageKey = "invalid_name"
	MessageInvalidTShirt        MessageKey = "invalid_tshirt"
)

// MessageKeys returns every key the state machine can emit.
func MessageKeys() []MessageKey {
	return []MessageKey{
		MessageNew,
		MessageAwaitingName,
		MessageAwaitingLastName,
		MessageAwaitingHonoree,
		MessageAwaitingRelationship,
		MessageCompleted,
		MessageInvalidName,
		MessageInvalidTShirt,
	}
}

// Catalog maps message keys to the text sent to the sender.
type Catalog map[MessageKey]string

// DefaultCatalog returns the built-in Spanish prompts.
func DefaultCatalog() Catalog {
	return Catalog{
		MessageNew:                  "Hola! Este es un numero automatico de Nuestra Casa para ayudarle ordenar sus camisetas para nuestra Caminata el 27 de Abril! Por favor responde con su nombre.",
		MessageAwaitingName:         "¡Gracias! ¿Cómo se llama la persona que estás honrando?",
		MessageAwaitingLastName:     "Por favor, dime su nombre y apellido.",
		MessageAwaitingHonoree:      "Por favor, completa la frase: Estoy caminando en memoria de ____________ (ejemplo: mi abuelo, mi hermana, mi hija).",
		MessageAwaitingRelationship: "¿Qué tamaño de camiseta quiere ordenar? Tenemos CHICO/MEDIANO/GRANDE/X GRANDE/XX GRANDE/JOVENES CHICO/JOVENES MEDIANO/JOVENES GRANDE.",
		MessageCompleted:            "¡Gracias por sus respuestas! ¡Nos vemos el 27 de Abril!",
		MessageInvalidName:          "Lo siento, ingrese un nombre válido (solo letras y espacios, mínimo 2 caracteres).",
		MessageInvalidTShirt:        "Por favor, seleccione una talla de la lista: CHICO, MEDIANO, GRANDE, X GRANDE, XX GRANDE, JOVENES CHICO, JOVENES MEDIANO, JOVENES GRANDE.",
	}
}

// With returns a copy of c where every non-empty override replaces the default text.
// Unknown keys are ignored.
func (c Catalog) With(overrides map[string]string) Catalog {
	out := make(Catalog, len(c))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range overrides {
		key := MessageKey(k)
		if _, ok := out[key]; ok && v != "" {
			out[key] = v
		}
	}
	return out
}

// Text returns the message for key, or the empty string if the key is unknown.
func (c Catalog) Text(key MessageKey) string {
	return c[key]
}
