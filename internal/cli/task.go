package cli

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/jrsteele09/go-task-client/internal/output"
	"github.com/jrsteele09/go-task-client/tasks"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks, optionally filtered.

Examples:
  taskctl task list
  taskctl task list --status pending
  taskctl task list --search report --json`,
	RunE: runTaskList,
}

var taskGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskGet,
}

var taskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a task",
	RunE:  runTaskCreate,
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskUpdate,
}

var taskStartCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Move a task into progress",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskStart,
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDone,
}

var taskRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskRm,
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskListCmd, taskGetCmd, taskCreateCmd, taskUpdateCmd, taskStartCmd, taskDoneCmd, taskRmCmd)

	taskListCmd.Flags().Int("page", 0, "page number")
	taskListCmd.Flags().Int("page-size", 0, "results per page")
	taskListCmd.Flags().String("search", "", "search term")
	taskListCmd.Flags().String("status", "", "filter by status (pending, in_progress, completed)")
	taskListCmd.Flags().Bool("json", false, "output as JSON")

	taskCreateCmd.Flags().String("title", "", "task title")
	taskCreateCmd.Flags().String("description", "", "task description")
	taskCreateCmd.Flags().Int64("assigned-to", 0, "assignee user id")
	taskCreateCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	_ = taskCreateCmd.MarkFlagRequired("title")

	taskUpdateCmd.Flags().String("title", "", "task title")
	taskUpdateCmd.Flags().String("description", "", "task description")
	taskUpdateCmd.Flags().String("status", "", "status (pending, in_progress, completed)")
	taskUpdateCmd.Flags().Int64("assigned-to", 0, "assignee user id")
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	ok, err := app.authorize("/task")
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	search, _ := cmd.Flags().GetString("search")
	status, _ := cmd.Flags().GetString("status")

	listed, err := app.tasks.List(cmd.Context(), tasks.ListParams{
		Page:     page,
		PageSize: pageSize,
		Search:   search,
		Status:   tasks.Status(status),
	})
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listed)
	}

	table := output.NewTable([]string{"ID", "TITLE", "STATUS", "DUE"})
	for _, task := range listed.Results {
		due := ""
		if task.DueDate != nil {
			due = task.DueDate.Format("2006-01-02")
		}
		table.AddRow([]string{
			strconv.FormatInt(task.ID, 10),
			task.Title,
			app.printer.StatusBadge(string(task.Status)),
			due,
		})
	}
	table.Render()
	app.printer.Info("%d of %d tasks", len(listed.Results), listed.Count)
	return nil
}

func runTaskGet(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	ok, err := app.authorize("/task")
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	task, err := app.tasks.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	printTask(app, task)
	return nil
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	ok, err := app.authorize("/task")
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	assignedTo, _ := cmd.Flags().GetInt64("assigned-to")

	task := tasks.Task{
		Title:       title,
		Description: description,
		AssignedTo:  assignedTo,
	}
	if due, _ := cmd.Flags().GetString("due"); due != "" {
		parsed, err := time.Parse("2006-01-02", due)
		if err != nil {
			return errors.Errorf("invalid due date %q, expected YYYY-MM-DD", due)
		}
		task.DueDate = &parsed
	}

	created, err := app.tasks.Create(cmd.Context(), task)
	if err != nil {
		return err
	}
	app.printer.Success("created task %d: %s", created.ID, created.Title)
	return nil
}

func runTaskUpdate(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	ok, err := app.authorize("/task")
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	status, _ := cmd.Flags().GetString("status")
	assignedTo, _ := cmd.Flags().GetInt64("assigned-to")

	updated, err := app.tasks.Update(cmd.Context(), id, tasks.Task{
		Title:       title,
		Description: description,
		Status:      tasks.Status(status),
		AssignedTo:  assignedTo,
	})
	if err != nil {
		return err
	}
	app.printer.Success("updated task %d", updated.ID)
	return nil
}

func runTaskStart(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	ok, err := app.authorize("/task")
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	started, err := app.tasks.Start(cmd.Context(), id)
	if err != nil {
		return err
	}
	app.printer.Success("task %d is now %s", started.ID, started.Status)
	return nil
}

func runTaskDone(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	ok, err := app.authorize("/task")
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	completed, err := app.tasks.Complete(cmd.Context(), id)
	if err != nil {
		return err
	}
	app.printer.Success("task %d completed", completed.ID)
	return nil
}

func runTaskRm(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	ok, err := app.authorize("/task")
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := app.tasks.Delete(cmd.Context(), id); err != nil {
		return err
	}
	app.printer.Success("deleted task %d", id)
	return nil
}

func printTask(app *app, task *tasks.Task) {
	app.printer.Print("%s %s", app.printer.Bold(task.Title), app.printer.StatusBadge(string(task.Status)))
	if task.Description != "" {
		app.printer.Print("%s", task.Description)
	}
	if task.AssignedTo != 0 {
		app.printer.Print("assigned to: %d", task.AssignedTo)
	}
	if task.DueDate != nil {
		app.printer.Print("due: %s", task.DueDate.Format("2006-01-02"))
	}
}
