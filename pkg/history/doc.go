/*
Package history stores the conversation Parrot learns from.

Messages from the user, and optionally the bot's own replies, are kept in a
SQLite table in insertion order. The Markov model is never persisted: it is
rebuilt from Corpus on every training pass, so this table is the only durable
state the bot has.

The package does not register a SQLite driver. Callers open the *sql.DB with
the driver of their choice, then call SetupSchema once before NewStore.

	if err := history.SetupSchema(db); err != nil {
		return err
	}
	store, err := history.NewStore(db)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Add(ctx, history.SenderUser, "the cat sat.")
	corpus, err := store.Corpus(ctx, false)
*/
package history
