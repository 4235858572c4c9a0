package tasks

// Singleton task definitions
var (
	GenerateInvoicesTask = &GenerateInvoicesTaskDef{}
	OverdueSweepTask     = &OverdueSweepTaskDef{}
	FeeReminderTask      = &FeeReminderTaskDef{}
)

// DefineTasks registers all known task handlers to the global registry
func DefineTasks() {
	RegisterHandler(GenerateInvoicesTask.TaskID(), GenerateInvoicesTask.HandleExecution)
	RegisterHandler(OverdueSweepTask.TaskID(), OverdueSweepTask.HandleExecution)
	RegisterHandler(FeeReminderTask.TaskID(), FeeReminderTask.HandleExecution)
}
