package mcp

import "github.com/mark3labs/mcp-go/mcp"

var stringItems = map[string]any{"type": "string"}

var logToolDef = mcp.NewTool("fact_log",
	mcp.WithDescription("Record a finished interval of activity. The interval can be "+
		"given as a combined spec (\"14:00..15:30\", \"1230+45\", \"+5\"), a between "+
		"pair (\"12:30-14:15\"), or individual since/until/duration tokens. When the "+
		"interval overlaps exactly one existing fact, that fact is truncated to end "+
		"where the new one begins; this destructive step runs only when "+
		"confirm_truncate is true."),
	mcp.WithString("activity",
		mcp.Description("Activity mask, \"activity@category\". Empty uses the configured default.")),
	mcp.WithString("spec",
		mcp.Description("Combined bound expression: \"SINCE..UNTIL\", \"TIME+MIN\", or \"+N\"/\"-N\".")),
	mcp.WithString("between",
		mcp.Description("Interval as \"START-END\" clock tokens, e.g. \"12:30-14:15\".")),
	mcp.WithString("since",
		mcp.Description("Start clock token, e.g. \"14:00\", \"205\", \"now-15\".")),
	mcp.WithString("until",
		mcp.Description("End clock token.")),
	mcp.WithString("duration",
		mcp.Description("Length as \"H:MM\" or minutes, e.g. \"1:30\" or \"45\".")),
	mcp.WithString("description",
		mcp.Description("Free-form note attached to the fact.")),
	mcp.WithArray("tags",
		mcp.Description("Tags to attach, merged with the configured standing tags."),
		mcp.Items(stringItems)),
	mcp.WithBoolean("amend",
		mcp.Description("Rebound the latest fact instead of creating a new one.")),
	mcp.WithBoolean("dry_run",
		mcp.Description("Compute and report the mutation without writing.")),
	mcp.WithBoolean("confirm_truncate",
		mcp.Description("Allow truncating the one overlapping fact. Defaults to false: "+
			"the call fails with ABORTED instead of destroying data.")),
)

var startToolDef = mcp.NewTool("fact_start",
	mcp.WithDescription("Punch in: open a new fact starting now. Fails while another "+
		"activity is still running."),
	mcp.WithString("activity",
		mcp.Description("Activity mask, \"activity@category\". Empty uses the configured default.")),
	mcp.WithString("description",
		mcp.Description("Free-form note attached to the fact.")),
	mcp.WithArray("tags",
		mcp.Description("Tags to attach."),
		mcp.Items(stringItems)),
	mcp.WithBoolean("continued",
		mcp.Description("Pick up where the last fact ended instead of now. When the "+
			"last fact is the same activity it is reopened in place.")),
	mcp.WithBoolean("confirm_resume",
		mcp.Description("Allow reopening a closed fact of the same activity, discarding "+
			"its end time. Defaults to false.")),
)

var stopToolDef = mcp.NewTool("fact_stop",
	mcp.WithDescription("Punch out: close the currently running fact."),
	mcp.WithString("description",
		mcp.Description("Note appended to the fact, prefixed with the elapsed time.")),
	mcp.WithArray("tags",
		mcp.Description("Tags merged into the fact's existing tags."),
		mcp.Items(stringItems)),
)

var appendToolDef = mcp.NewTool("fact_append",
	mcp.WithDescription("Append a timestamped note to the latest fact's description. "+
		"Prior text is never discarded."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("The note to append.")),
)

var currentToolDef = mcp.NewTool("fact_current",
	mcp.WithDescription("Report the latest fact: its running time when open, or the "+
		"idle gap since it ended."),
)

var findToolDef = mcp.NewTool("fact_find",
	mcp.WithDescription("Search facts over a trailing window of days and summarize the "+
		"time spent. In the query, \",\" separates alternatives (OR) and spaces "+
		"separate required terms (AND)."),
	mcp.WithString("query",
		mcp.Description("Search terms matched against activity, category, tags, and description.")),
	mcp.WithNumber("days",
		mcp.Description("Window size in days ending today. Defaults to 1 (only today).")),
)
