package geminiservice

/* =================================================================================
							GEMINI SCHEMA DEFINITION
	Tells Gemini how to format its JSON response ("controlled generation").
=================================================================================*/

// GeminiSchema maps to the API's Schema object.
type GeminiSchema struct {
	// Type is the data type: "OBJECT", "ARRAY", "STRING", "INTEGER", "NUMBER".
	Type string `json:"type"`

	Format      string `json:"format,omitempty"`
	Description string `json:"description,omitempty"`

	// Properties maps field names to their child schemas (Type "OBJECT").
	Properties map[string]*GeminiSchema `json:"properties,omitempty"`

	// Items is the element schema (Type "ARRAY").
	Items *GeminiSchema `json:"items,omitempty"`

	Required []string `json:"required,omitempty"`
	Enum     []string `json:"enum,omitempty"`
	Nullable bool     `json:"nullable,omitempty"`
}

func str(desc string) *GeminiSchema { return &GeminiSchema{Type: "STRING", Description: desc} }
func num(desc string) *GeminiSchema { return &GeminiSchema{Type: "NUMBER", Description: desc} }

/* =================================================================================
									PROMPTS
=================================================================================*/

// SystemPrompt is shared by every call: persona and output rules.
const SystemPrompt = `Sos un asistente personal de salud, nutrición y organización para un usuario de Argentina.
Respondé siempre en español rioplatense, de forma breve, concreta y motivadora.
Devolvé SOLO la estructura JSON definida en el schema, sin markdown ni texto adicional.
Cuando estimes calorías, usá porciones estándar y devolvé un único número (si dudás entre 300 y 400, devolvé 350).`

const foodPrompt = `Te doy la descripción de una comida o plato. Extraé el nombre de la comida (en español) y su cantidad aproximada de calorías.
Si la descripción incluye varias comidas, usá el plato principal o sumá las calorías de todo lo descripto.
La descripción es: %s`

const exercisePrompt = `Te doy la descripción de un ejercicio. Extraé el nombre del ejercicio (en español), las calorías aproximadas quemadas y la duración en minutos.
Si la descripción incluye varios ejercicios, usá el principal o combiná las calorías.
La descripción es: %s`

const todoPrompt = `Hoy es %s (%s). Como asistente de gestión de tareas, analizá el siguiente texto que describe una tarea y extraé la tarea principal y su fecha límite si se menciona.

Reglas:
1. La tarea debe comenzar con un verbo en infinitivo.
2. Eliminá palabras innecesarias pero mantené el contexto importante.
3. Fechas:
   - Entendé referencias relativas como "hoy", "mañana", "próximo [día]".
   - Convertí todas las fechas al formato YYYY-MM-DD.
   - Si no hay fecha mencionada, devolvé due_date null.
   - Si mencionan un día de la semana, calculá la próxima ocurrencia desde hoy.

Ejemplos (asumiendo que hoy es %s):
Entrada: "tengo que llamar al médico mañana" -> {"task": "llamar al médico", "due_date": "%s"}
Entrada: "necesito comprar pan" -> {"task": "comprar pan", "due_date": null}

El texto a analizar es: %s`

const evaluationPrompt = `Como nutricionista y entrenador personal virtual, evaluá el día del usuario según sus comidas y ejercicios.

Comidas:
%s

Ejercicios:
%s

Resumen calórico:
- Calorías consumidas: %d
- Calorías quemadas: %d
- Balance calórico neto: %d

Incluí: análisis de las comidas y su distribución, análisis de los ejercicios y su efectividad,
recomendaciones específicas, una calificación general del día del 1 al 10 y sugerencias para mañana.
La respuesta debe ser específica, personalizada y motivadora.`

// DefaultPlanProfile is the person the weekly plans target unless configured otherwise.
const DefaultPlanProfile = `hombre de 31 años, 1,70 m, 84 kg, que quiere bajar de peso y ganar músculo`

const mealPlanPrompt = `Generá un plan de alimentación semanal para: %s.
La dieta debe aportar entre 1.800 y 2.000 calorías diarias, excluir pescado e incluir una comida libre controlada el fin de semana.
Usá alimentos accesibles y económicos que se consigan en Argentina.`

const exercisePlanPrompt = `Generá un plan de ejercicios semanal para: %s.
Combiná fuerza y cardio, con progresión razonable, al menos un día de descanso activo y ejercicios que se puedan hacer en un gimnasio de barrio o en casa.`

const transcriptionPrompt = `Transcribí este audio y devolvé el texto transcripto. Además, entendé el contexto: puede ser una comida ("meal"), un ejercicio ("exercise") o una tarea ("todo").
- Si es una comida: nombre de la comida y calorías.
- Si es un ejercicio: nombre del ejercicio, calorías quemadas y duración en minutos.
- Si es una tarea: la tarea en "name" y la fecha límite si se menciona en "due_date".
Si el audio no se entiende, usá type "unknown" y "unknown" en los demás campos.`

/* =================================================================================
									SCHEMAS
=================================================================================*/

var FoodSchema = &GeminiSchema{
	Type: "OBJECT",
	Properties: map[string]*GeminiSchema{
		"name":     str("Nombre de la comida en español"),
		"calories": num("Calorías aproximadas, un único número"),
	},
	Required: []string{"name", "calories"},
}

var ExerciseSchema = &GeminiSchema{
	Type: "OBJECT",
	Properties: map[string]*GeminiSchema{
		"name":     str("Nombre del ejercicio en español"),
		"calories": num("Calorías quemadas aproximadas"),
		"duration": num("Duración en minutos"),
	},
	Required: []string{"name", "calories", "duration"},
}

var TodoSchema = &GeminiSchema{
	Type: "OBJECT",
	Properties: map[string]*GeminiSchema{
		"task": str("Tarea formateada, comenzando con un verbo en infinitivo"),
		"due_date": {
			Type:        "STRING",
			Description: "Fecha límite YYYY-MM-DD, o null si no se menciona",
			Nullable:    true,
		},
	},
	Required: []string{"task"},
}

var EvaluationSchema = &GeminiSchema{
	Type: "OBJECT",
	Properties: map[string]*GeminiSchema{
		"analisisComidas":         str("Análisis de las comidas y su distribución"),
		"analisisEjercicios":      str("Análisis de los ejercicios y su efectividad"),
		"recomendaciones":         str("Recomendaciones específicas para mejorar"),
		"calificacion":            num("Calificación general del día, de 1 a 10"),
		"sugerenciasSiguienteDia": str("Sugerencias para el día siguiente"),
	},
	Required: []string{"analisisComidas", "analisisEjercicios", "recomendaciones", "calificacion", "sugerenciasSiguienteDia"},
}

var weekdayKeys = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func weekOf(day *GeminiSchema) *GeminiSchema {
	props := make(map[string]*GeminiSchema, len(weekdayKeys))
	for _, k := range weekdayKeys {
		props[k] = day
	}
	return &GeminiSchema{Type: "OBJECT", Properties: props, Required: weekdayKeys}
}

var MealPlanSchema = &GeminiSchema{
	Type: "OBJECT",
	Properties: map[string]*GeminiSchema{
		"weeklyCalories":    num("Calorías totales de la semana"),
		"dailyProteinGrams": num("Gramos de proteína diarios"),
		"recommendations":   {Type: "ARRAY", Items: str("Recomendación breve")},
		"mealPlan": weekOf(&GeminiSchema{
			Type: "OBJECT",
			Properties: map[string]*GeminiSchema{
				"breakfast": str("Desayuno"),
				"lunch":     str("Almuerzo"),
				"snack":     str("Merienda"),
				"dinner":    str("Cena"),
			},
			Required: []string{"breakfast", "lunch", "snack", "dinner"},
		}),
	},
	Required: []string{"weeklyCalories", "dailyProteinGrams", "recommendations", "mealPlan"},
}

var ExercisePlanSchema = &GeminiSchema{
	Type: "OBJECT",
	Properties: map[string]*GeminiSchema{
		"weeklyGoal":      str("Objetivo de la semana en una oración"),
		"recommendations": {Type: "ARRAY", Items: str("Recomendación breve")},
		"exercisePlan": weekOf(&GeminiSchema{
			Type: "OBJECT",
			Properties: map[string]*GeminiSchema{
				"focus":           str("Enfoque del día, por ejemplo 'Tren superior' o 'Descanso activo'"),
				"activities":      {Type: "ARRAY", Items: str("Ejercicio con series, repeticiones o tiempo")},
				"durationMinutes": num("Duración total en minutos"),
			},
			Required: []string{"focus", "activities", "durationMinutes"},
		}),
	},
	Required: []string{"weeklyGoal", "recommendations", "exercisePlan"},
}

var TranscriptionSchema = &GeminiSchema{
	Type: "OBJECT",
	Properties: map[string]*GeminiSchema{
		"text": str("Texto transcripto"),
		"context": {
			Type: "OBJECT",
			Properties: map[string]*GeminiSchema{
				"type":     {Type: "STRING", Format: "enum", Enum: []string{"meal", "exercise", "todo", "unknown"}},
				"name":     str("Comida, ejercicio o tarea"),
				"calories": str("Calorías, o 'unknown'"),
				"duration": str("Duración en minutos, o 'unknown'"),
				"due_date": str("Fecha límite mencionada para una tarea"),
			},
			Required: []string{"type", "name"},
		},
	},
	Required: []string{"text", "context"},
}
