package telegram

// Prompts sent with force_reply. Replies are routed by the question they quote.
const (
	mealQuestion     = "¿Qué comiste?"
	exerciseQuestion = "¿Qué ejercicio realizaste?"
	todoQuestion     = "¿Qué tarea quieres agregar?"

	addMealPrompt = "🍽 " + mealQuestion + " Describe tu comida lo más detallado posible.\n" +
		"Por ejemplo: 'milanesa con puré' o 'ensalada de lechuga, tomate y zanahoria'"
	addExercisePrompt = "💪 " + exerciseQuestion + " Incluye el tiempo si es posible.\n" +
		"Por ejemplo: '30 minutos de caminata' o 'una hora de gimnasio'"
	addTodoPrompt = "📝 " + todoQuestion + "\n" +
		"Puedes incluir una fecha límite agregando 'para [fecha]' al final.\n" +
		"Por ejemplo: 'Llamar al médico para mañana' o 'Comprar verduras para el viernes'"
)

const helpMessage = "🤖 *Comandos Disponibles*\n\n" +
	"📝 *Registro de Actividades*\n" +
	"/addmeal - Registrar una comida\n" +
	"/addexercise - Registrar un ejercicio\n" +
	"/addtodo - Agregar una tarea\n\n" +
	"📊 *Análisis y Reportes*\n" +
	"/evaluateday - Evaluar el día actual\n" +
	"/allmymeals - Ver historial de comidas\n" +
	"/allexercises - Ver historial de ejercicios\n" +
	"/todos - Ver lista de tareas\n\n" +
	"📋 *Planes*\n" +
	"/mealplan - Generar plan de alimentación\n" +
	"/exerciseplan - Generar plan de ejercicios\n\n" +
	"💡 *Tips*:\n" +
	"• Puedes enviar notas de voz describiendo tus comidas, ejercicios o tareas\n" +
	"• Al agregar una tarea, puedes incluir una fecha límite usando 'para \\[fecha]'\n" +
	"• Usa /done\\_X para marcar una tarea como completada\n" +
	"• Usa /delete\\_X para eliminar una tarea"

const (
	greetingMessage       = "👋 ¡Hola! Usa /help para ver todos los comandos disponibles."
	unknownCommandMessage = "🤔 No conozco ese comando. Usa /help para ver todos los comandos disponibles."
	genericErrorMessage   = "Lo siento, hubo un error procesando tu mensaje. Por favor intenta nuevamente."
	notUnderstoodMessage  = "Lo siento, no pude entender el mensaje. Por favor intenta nuevamente."

	loadingTodosMessage     = "📋 Cargando tu lista de tareas..."
	loadingMealsMessage     = "📋 Cargando tu historial de comidas..."
	loadingExercisesMessage = "📋 Cargando tu historial de ejercicios..."
	evaluatingMessage       = "📊 Analizando tu día..."
	mealPlanMessage         = "Generando plan de alimentación personalizado..."
	exercisePlanMessage     = "Generando plan de ejercicio personalizado..."
	processingVoiceMessage  = "Procesando tu nota de voz..."

	invalidTaskIDMessage = "❌ ID de tarea inválido"
	taskNotFoundMessage  = "❌ No encontré esa tarea"
	taskDoneMessage      = "✅ ¡Tarea marcada como completada!"
	taskReopenedMessage  = "↩️ Tarea marcada como pendiente"
	taskDeletedMessage   = "🗑️ Tarea eliminada"
	toggleErrorMessage   = "❌ Error al actualizar la tarea"
	deleteErrorMessage   = "❌ Error al eliminar la tarea"
	listErrorMessage     = "❌ Error al cargar las tareas"

	mealErrorMessage     = "❌ Hubo un error al registrar la comida. Por favor intenta nuevamente."
	exerciseErrorMessage = "❌ Hubo un error al registrar el ejercicio. Por favor intenta nuevamente."
	todoErrorMessage     = "❌ Hubo un error al agregar la tarea. Por favor intenta nuevamente."
	evaluateErrorMessage = "Lo siento, hubo un error al evaluar tu día. Por favor intenta nuevamente."
	historyErrorMessage  = "❌ No pude cargar tu historial. Por favor intenta nuevamente."
	planErrorMessage     = "Lo siento, no pude generar el plan. Por favor intenta nuevamente."
)
