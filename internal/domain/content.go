package domain

import (
	"errors"
	"fmt"
)

// DefaultBankID identifies the built-in question bank.
const DefaultBankID = "como-estas-contigo"

// DefaultTenantID is used when no tenant is configured.
const DefaultTenantID = "default-app-id"

// CollectionPath returns the tenant-scoped path submissions are appended to.
func CollectionPath(tenantID string) string {
	if tenantID == "" {
		tenantID = DefaultTenantID
	}
	return fmt.Sprintf("artifacts/%s/public/data/test_leads", tenantID)
}

// DefaultBank returns the five-question self-care bank.
func DefaultBank() QuestionBank {
	return QuestionBank{
		ID:    DefaultBankID,
		Title: "¿Cómo estás contigo misma hoy?",
		Questions: []Question{
			{
				ID:     1,
				Prompt: "¿Qué es lo primero que piensas al despertar?",
				Options: []Option{
					{Label: "A. Tengo tanto que hacer... ya voy tarde.", Category: CategoryA},
					{Label: "B. Estoy cansada, pero agradezco este nuevo día.", Category: CategoryB},
					{Label: "C. Hoy es una nueva oportunidad para cuidarme.", Category: CategoryC},
				},
			},
			{
				ID:     2,
				Prompt: "¿Cómo te hablas cuando algo no te sale como esperabas?",
				Options: []Option{
					{Label: "A. Me critico o me exijo más.", Category: CategoryA},
					{Label: "B. Me frustro, pero trato de entenderme.", Category: CategoryB},
					{Label: "C. Me hablo con amabilidad y me doy espacio.", Category: CategoryC},
				},
			},
			{
				ID:     3,
				Prompt: "¿Con qué frecuencia priorizas tus necesidades?",
				Options: []Option{
					{Label: "A. Casi nunca, siempre hay algo más importante.", Category: CategoryA},
					{Label: "B. A veces, pero me cuesta sostenerlo.", Category: CategoryB},
					{Label: "C. Con frecuencia, aunque no siempre es fácil.", Category: CategoryC},
				},
			},
			{
				ID:     4,
				Prompt: "¿Qué tan conectada te sientes con tus emociones?",
				Options: []Option{
					{Label: "A. Las ignoro o las reprimo.", Category: CategoryA},
					{Label: "B. A veces me abruman, pero trato de expresarlas.", Category: CategoryB},
					{Label: "C. Las reconozco, las acepto y las valido.", Category: CategoryC},
				},
			},
			{
				ID:     5,
				Prompt: "¿Cuál de estas frases describe mejor tu diálogo interno?",
				Options: []Option{
					{Label: "A. Nunca es suficiente.", Category: CategoryA},
					{Label: "B. Estoy intentando cambiar.", Category: CategoryB},
					{Label: "C. Me respeto y me acompaño en mi proceso.", Category: CategoryC},
				},
			},
		},
	}
}

// Narrative is the results copy shown for a mode.
type Narrative struct {
	Headline    string `json:"headline"`
	Description string `json:"description"`
	Affirmation string `json:"affirmation"`
}

var narratives = map[Mode]Narrative{
	ModeExigencia: {
		Headline:    "Mayoría A: Modo Exigencia",
		Description: "Estás funcionando desde la exigencia y el deber. Probablemente te has desconectado de ti misma para cumplir con todo lo que se espera de ti.",
		Affirmation: "Hoy me permito bajar la guardia y ser suficiente tal como soy.",
	},
	ModeTransicion: {
		Headline:    "Mayoría B: Modo Transición",
		Description: "Estás en un momento de cambio, intentando escucharte más. A veces caes en viejos patrones, pero también estás abriéndote a una forma nueva de tratarte.",
		Affirmation: "Estoy aprendiendo a elegirme cada día, paso a paso.",
	},
	ModeConexion: {
		Headline:    "Mayoría C: Modo Conexión",
		Description: "Estás cultivando una relación más amorosa contigo misma. Aunque no todo sea perfecto, estás eligiendo desde el autocuidado, el respeto y la conciencia.",
		Affirmation: "Soy mi lugar seguro. Me honro, me cuido, me celebro.",
	},
}

// NarrativeFor returns the copy for mode.
func NarrativeFor(mode Mode) (Narrative, bool) {
	n, ok := narratives[mode]
	return n, ok
}

// Pitch is the offer shown under the results.
type Pitch struct {
	Text         string `json:"text"`
	Offer        string `json:"offer"`
	CallToAction string `json:"callToAction"`
	URL          string `json:"url"`
}

// DefaultPitch returns the workbook offer pointing at url.
func DefaultPitch(url string) Pitch {
	return Pitch{
		Text:         "Si este test resonó contigo, te invito a conocer nuestro Workbook de 7 Días para Practicar el Amor Propio. ¡Es la guía perfecta para profundizar en este viaje!",
		Offer:        "¡Por lanzamiento: Workbook + 4 Bonus exclusivos por solo $7 USD!",
		CallToAction: "¡Quiero mi Workbook + Bonus!",
		URL:          url,
	}
}

const (
	MessageSelectionRequired = "Por favor, selecciona una opción para continuar."
	MessageInvalidEmail      = "Por favor, ingresa un correo electrónico válido."
	MessageNotReady          = "La base de datos no está lista. Inténtalo de nuevo en unos segundos."
	MessagePersistence       = "Error al guardar tu correo. Por favor, inténtalo de nuevo."
	MessageSaved             = "¡Tu correo ha sido guardado exitosamente!"
	MessageGeneric           = "Algo salió mal. Por favor, inténtalo de nuevo."
)

// UserMessage returns the short message shown to the visitor for err.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSelectionRequired), errors.Is(err, ErrInvalidCategory), errors.Is(err, ErrQuestionNotFound):
		return MessageSelectionRequired
	case errors.Is(err, ErrInvalidEmail):
		return MessageInvalidEmail
	case errors.Is(err, ErrNotReady):
		return MessageNotReady
	case errors.Is(err, ErrPersistence):
		return MessagePersistence
	}
	return MessageGeneric
}
