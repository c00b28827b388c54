package command

// HelpText is the reply to anything the parser does not recognize.
const HelpText = `Available commands:

Tasks:
- create task [task name]
- list tasks
- update task [old content] to [new content]
- toggle task complete [task name]
- delete task [task name]

Projects:
- create project [project name]
- list projects
- update project [old name] to [new name]
- delete project [project name]

Notes:
- create note [note content]
- list notes
- update note [old content] to [new content]
- delete note [note content]

Ideas:
- create idea [idea content]
- list ideas
- update idea [old content] to [new content]
- delete idea [idea content]`
