package dispatch

// helpText enumerates the command grammar. The wording of the verb keywords,
// prefix words, and separators matches what the parser accepts.
const helpText = `Here's what I understand:
  add <task> [!high|!medium|!low] [#tag | as <tag>]
  add <task> to <project> project
  add subtask <text> to <task>
  tick <task> / complete <task>        (prefix "all" after the verb for every match)
  delete <task> / remove <task>
  archive <task> / archive completed
  tag <task> as <tag>
  filter <tag> / show <tag> [tasks]
  priority <task> <high|medium|low>
  due <today|tomorrow|next monday..sunday> <task>
  snooze <task> <N> <days|weeks|months>
  repeat daily <task> / repeat weekly on <weekday> <task> / repeat monthly <task>
  remind me [about] <task> <today|tomorrow> <time>
  remind me <N> hours before <task>
  create project <name> / list projects
  sort by <priority|due date|created|alphabetical|name>
  show calendar / hide calendar
  dark mode / light mode
  summarize <today|this week|tomorrow>
  help / commands

Anything else is treated as a task in plain language, like "remind me to call mom tomorrow at 5pm".`
