/*
Package runner drives an interactive conversation against a TurnEngine.

It reads user lines through a pluggable IOHandler, sanitizes them, runs one
turn per line and hands the resulting TurnState back to the handler. The same
loop serves a human at a terminal (TextHandler) and a program speaking
JSON Lines over stdio (JSONHandler).

# Usage

	r := runner.New(engine,
		runner.WithSessionID("user-1"),
		runner.WithHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
