package tasks

// DefineTasks registers all available tasks
func DefineTasks() {
	RegisterHandler(DeactivateVoucherTask.TaskID(), DeactivateVoucherTask.HandleExecution)
	RegisterHandler(MarkOverdueTask.TaskID(), MarkOverdueTask.HandleExecution)
	RegisterHandler(EODReportTask.TaskID(), EODReportTask.HandleExecution)
}
