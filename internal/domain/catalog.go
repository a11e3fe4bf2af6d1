package domain

import (
	"fmt"
)

// Question is one screening questionnaire item. Weight contributes to the
// category score when the question is affirmed. DependsOn names a question
// that must be affirmed for this one to be relevant; answers to dependent
// questions still score on their own.
type Question struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Text        string   `json:"text"`
	Weight      float64  `json:"weight"`
	Required    bool     `json:"required"`
	DependsOn   string   `json:"dependsOn,omitempty"`
	Affirmative []string `json:"affirmative,omitempty"`
}

// defaultAffirmative covers both answer dialects seen in the wild.
var defaultAffirmative = []string{"SI", "YES"}

// AffirmativeTokens returns the tokens that count as a positive answer for
// this question.
func (q *Question) AffirmativeTokens() []string {
	if len(q.Affirmative) > 0 {
		return q.Affirmative
	}
	return defaultAffirmative
}

// Catalog is an immutable, versioned set of questions for one scoring scheme.
// Build one with NewCatalog so the id index and validation are established up
// front.
type Catalog struct {
	scheme    Scheme
	questions []Question
	byID      map[string]*Question
}

// NewCatalog validates and indexes a question list. Duplicate ids, empty ids,
// negative weights and dangling DependsOn references are load-time errors.
func NewCatalog(scheme Scheme, questions []Question) (*Catalog, error) {
	if !scheme.IsValid() {
		return nil, fmt.Errorf("catalog: %w: %q", ErrInvalidScheme, scheme)
	}
	c := &Catalog{
		scheme:    scheme,
		questions: make([]Question, len(questions)),
		byID:      make(map[string]*Question, len(questions)),
	}
	copy(c.questions, questions)
	for i := range c.questions {
		q := &c.questions[i]
		if q.ID == "" {
			return nil, fmt.Errorf("catalog: question %d has empty id", i)
		}
		if q.Weight < 0 {
			return nil, fmt.Errorf("catalog: question %q has negative weight %v", q.ID, q.Weight)
		}
		if _, dup := c.byID[q.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate question id %q", q.ID)
		}
		c.byID[q.ID] = q
	}
	for i := range c.questions {
		q := &c.questions[i]
		if q.DependsOn == "" {
			continue
		}
		if _, ok := c.byID[q.DependsOn]; !ok {
			return nil, fmt.Errorf("catalog: question %q depends on unknown question %q", q.ID, q.DependsOn)
		}
	}
	return c, nil
}

// Scheme returns the scheme this catalog belongs to.
func (c *Catalog) Scheme() Scheme {
	return c.scheme
}

// Question looks up a question by id.
func (c *Catalog) Question(id string) (*Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// Questions returns the catalog questions in declaration order. The returned
// slice is shared; callers must not mutate it.
func (c *Catalog) Questions() []Question {
	return c.questions
}

// Len returns the number of questions.
func (c *Catalog) Len() int {
	return len(c.questions)
}

// Categories returns the distinct categories in declaration order.
func (c *Catalog) Categories() []Category {
	seen := make(map[Category]bool)
	var cats []Category
	for i := range c.questions {
		if cat := c.questions[i].Category; !seen[cat] {
			seen[cat] = true
			cats = append(cats, cat)
		}
	}
	return cats
}

// ValidateResponses checks that every response references a catalog question.
func (c *Catalog) ValidateResponses(responses []SymptomResponse) error {
	for _, r := range responses {
		if _, ok := c.byID[r.QuestionID]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownQuestion, r.QuestionID)
		}
	}
	return nil
}

// DetailedCatalog returns the full CIPYP screening questionnaire. Question
// ids and weights are fixed by the questionnaire revision and must stay in
// sync with the detailed scheme thresholds.
func DetailedCatalog() *Catalog {
	c, err := NewCatalog(SchemeDetailed, detailedQuestions)
	if err != nil {
		panic(fmt.Sprintf("built-in detailed catalog invalid: %v", err))
	}
	return c
}

// GenericCatalog returns the short 15-item triage questionnaire used by the
// generic combinatorial rule set.
func GenericCatalog() *Catalog {
	c, err := NewCatalog(SchemeGeneric, genericQuestions)
	if err != nil {
		panic(fmt.Sprintf("built-in generic catalog invalid: %v", err))
	}
	return c
}

var detailedQuestions = []Question{
	// Síntomas cutáneos
	{ID: "maculas", Category: CategoryCutaneous, Text: "¿El paciente presenta máculas?", Weight: 2, Required: true},
	{ID: "fragilidadCutanea", Category: CategoryCutaneous, Text: "¿Presenta fragilidad cutánea?", Weight: 5, Required: true},
	{ID: "hipertricosis", Category: CategoryCutaneous, Text: "¿Presenta hipertricosis?", Weight: 4, Required: true},
	{ID: "nodulos", Category: CategoryCutaneous, Text: "¿Presenta nódulos?", Weight: 1, Required: true},
	{ID: "lesionesOculares", Category: CategoryCutaneous, Text: "¿Presenta lesiones oculares?", Weight: 1, Required: true},
	{ID: "costras", Category: CategoryCutaneous, Text: "¿Presenta costras?", Weight: 3, Required: true},
	{ID: "quistesMilia", Category: CategoryCutaneous, Text: "¿Presenta quistes de milia?", Weight: 3, Required: true},
	{ID: "hiperpigmentacion", Category: CategoryCutaneous, Text: "¿Presenta hiperpigmentación?", Weight: 5, Required: true},
	{ID: "ampollas", Category: CategoryCutaneous, Text: "¿Presenta ampollas?", Weight: 5, Required: true},
	{ID: "fotosensibilidad", Category: CategoryCutaneous, Text: "¿Presenta fotosensibilidad?", Weight: 5, Required: true},
	{ID: "pruritos", Category: CategoryCutaneous, Text: "¿Presenta pruritos?", Weight: 2, Required: true},
	{ID: "tricosis", Category: CategoryCutaneous, Text: "¿Presenta tricosis?", Weight: 3, Required: true},

	// Síntomas agudos
	{ID: "trastornosPsiquiatricos", Category: CategoryAcute, Text: "¿Presenta trastornos psiquiátricos?", Weight: 4, Required: true},
	{ID: "parestesias", Category: CategoryAcute, Text: "¿Presenta parestesias?", Weight: 5, Required: true},
	{ID: "cefaleas", Category: CategoryAcute, Text: "¿Presenta cefaleas?", Weight: 3, Required: true},
	{ID: "paresia", Category: CategoryAcute, Text: "¿Presenta paresia?", Weight: 5, Required: true},
	{ID: "convulsiones", Category: CategoryAcute, Text: "¿Presenta convulsiones?", Weight: 3, Required: true},
	{ID: "trastornosAbdominales", Category: CategoryAcute, Text: "¿Presenta trastornos abdominales?", Weight: 5, Required: true},
	{ID: "sindromeAcidoSensitivo", Category: CategoryAcute, Text: "¿Presenta síndrome ácido sensitivo?", Weight: 2, Required: true},
	{ID: "palpitaciones", Category: CategoryAcute, Text: "¿Presenta palpitaciones?", Weight: 3, Required: true},
	{ID: "anorexia", Category: CategoryAcute, Text: "¿Presenta anorexia?", Weight: 2, Required: true},
	{ID: "estres", Category: CategoryAcute, Text: "¿Presenta estrés?", Weight: 5, Required: true},
	{ID: "trastornosNeurologicos", Category: CategoryAcute, Text: "¿Presenta trastornos neurológicos?", Weight: 4, Required: true},
	{ID: "doloresMusculares", Category: CategoryAcute, Text: "¿Presenta dolores musculares?", Weight: 3, Required: true},
	{ID: "mareos", Category: CategoryAcute, Text: "¿Presenta mareos?", Weight: 3, Required: true},
	{ID: "paralisis", Category: CategoryAcute, Text: "¿Presenta parálisis?", Weight: 4, Required: true},
	{ID: "dolorAbdominalLumbar", Category: CategoryAcute, Text: "¿Presenta dolor abdominal/lumbar?", Weight: 5, Required: true},
	{ID: "constipacion", Category: CategoryAcute, Text: "¿Presenta constipación?", Weight: 3, Required: true},
	{ID: "astenia", Category: CategoryAcute, Text: "¿Presenta astenia?", Weight: 4, Required: true},

	// Anamnesis
	{ID: "colorOrina", Category: CategoryAnamnesis, Text: "¿Color de orina oscura/ámbar?", Weight: 5, Required: true, Affirmative: []string{"Oscura", "SI"}},
	{ID: "familiares", Category: CategoryAnamnesis, Text: "¿Tiene antecedentes familiares de Porfiria?", Weight: 5, Required: true},
	{ID: "diabetes", Category: CategoryAnamnesis, Text: "¿Tiene diabetes?", Weight: 0.5, Required: true},
	{ID: "hta", Category: CategoryAnamnesis, Text: "¿Tiene HTA?", Weight: 0.5, Required: true},
	{ID: "tiroides", Category: CategoryAnamnesis, Text: "¿Tiene problemas de tiroides?", Weight: 0.5, Required: true},
	{ID: "celiaquia", Category: CategoryAnamnesis, Text: "¿Tiene celiaquía?", Weight: 0.5, Required: true},
	{ID: "lupus", Category: CategoryAnamnesis, Text: "¿Tiene lupus?", Weight: 0.5, Required: true},

	// Factores ambientales
	{ID: "operaciones", Category: CategoryEnvironmental, Text: "¿Ha tenido operaciones recientes?", Weight: 1, Required: true},
	{ID: "contactoPoliclorados", Category: CategoryEnvironmental, Text: "¿Ha tenido contacto con policlorados?", Weight: 1, Required: true},
	{ID: "contactoOtrasDrogas", Category: CategoryEnvironmental, Text: "¿Ha tenido contacto con otras drogas?", Weight: 1, Required: true},
	{ID: "contactoPlomo", Category: CategoryEnvironmental, Text: "¿Ha tenido contacto con plomo?", Weight: 0.5, Required: true},
	{ID: "contactoOtrosMetales", Category: CategoryEnvironmental, Text: "¿Ha tenido contacto con otros metales?", Weight: 0.5, Required: true},
	{ID: "cercaniaFabrica", Category: CategoryEnvironmental, Text: "¿Vive cerca de una fábrica?", Weight: 1, Required: true},
	{ID: "contactoVeneno", Category: CategoryEnvironmental, Text: "¿Ha tenido contacto con venenos?", Weight: 1, Required: true},
	{ID: "contactoDerivadoPetroleo", Category: CategoryEnvironmental, Text: "¿Ha tenido contacto con derivados del petróleo?", Weight: 1, Required: true},
	{ID: "consumeAlcohol", Category: CategoryEnvironmental, Text: "¿Consume alcohol regularmente?", Weight: 5, Required: true},
	{ID: "fuma", Category: CategoryEnvironmental, Text: "¿Fuma?", Weight: 2, Required: true},
	{ID: "barbituricos", Category: CategoryEnvironmental, Text: "¿Consume barbitúricos?", Weight: 5, Required: true},
	{ID: "medicamentosHormonas", Category: CategoryEnvironmental, Text: "¿Toma medicamentos hormonales?", Weight: 5, Required: true},
	{ID: "anomaliasPeriodosMenstruales", Category: CategoryEnvironmental, Text: "¿Presenta anomalías en los períodos menstruales?", Weight: 4},
}

var genericQuestions = []Question{
	{ID: "1", Category: CategoryGastrointestinal, Text: "¿El paciente presenta dolor abdominal severo?", Weight: 3, Required: true},
	{ID: "2", Category: CategoryGastrointestinal, Text: "¿El dolor abdominal se localiza principalmente en el cuadrante superior derecho?", Weight: 2, DependsOn: "1"},
	{ID: "3", Category: CategoryNeurological, Text: "¿El paciente presenta debilidad muscular?", Weight: 2, Required: true},
	{ID: "4", Category: CategoryNeurological, Text: "¿La debilidad muscular afecta principalmente las extremidades superiores?", Weight: 1, DependsOn: "3"},
	{ID: "5", Category: CategorySkin, Text: "¿El paciente presenta lesiones cutáneas o fotosensibilidad?", Weight: 2, Required: true},
	{ID: "6", Category: CategorySkin, Text: "¿Las lesiones aparecen principalmente en áreas expuestas al sol?", Weight: 1, DependsOn: "5"},
	{ID: "7", Category: CategoryNeurological, Text: "¿El paciente presenta cambios en el comportamiento o estado mental?", Weight: 2, Required: true},
	{ID: "8", Category: CategoryNeurological, Text: "¿Se observan síntomas de ansiedad, confusión o alucinaciones?", Weight: 1, DependsOn: "7"},
	{ID: "9", Category: CategoryGenetic, Text: "¿El paciente tiene antecedentes familiares de Porfiria?", Weight: 3, Required: true},
	{ID: "10", Category: CategoryTriggers, Text: "¿El paciente está tomando algún medicamento que pueda desencadenar Porfiria?", Weight: 2, Required: true},
	{ID: "11", Category: CategoryTriggers, Text: "¿El paciente consume alcohol regularmente?", Weight: 1, Required: true},
	{ID: "12", Category: CategoryTriggers, Text: "¿El paciente está en ayuno prolongado o dieta restrictiva?", Weight: 1, Required: true},
	{ID: "13", Category: CategoryGastrointestinal, Text: "¿El paciente presenta náuseas y vómitos?", Weight: 1, Required: true},
	{ID: "14", Category: CategoryGastrointestinal, Text: "¿El paciente presenta estreñimiento?", Weight: 1, Required: true},
	{ID: "15", Category: CategoryNeurological, Text: "¿El paciente presenta convulsiones?", Weight: 2, Required: true},
}
