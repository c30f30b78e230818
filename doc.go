// Package zeroshot classifies free text against caller-supplied topic labels
// without any task-specific training.
//
// A Client tries model-backed providers in priority order: a locally loaded
// NLI cross-encoder, then a hosted inference endpoint. The first provider to
// return a well-formed result wins. When none does, a keyword overlap
// heuristic answers instead, so a valid request always yields a ranked list.
// The result records which provider produced it and why earlier ones failed.
//
// # Basic Usage
//
// Build a client from configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := zeroshot.NewClientFromConfig(cfg, logger.NewDefaultLogger(slog.LevelInfo))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// Labels are passed as a comma separated string:
//
//	result, err := client.Classify(ctx, "The striker scored twice", "sports, politics, health", false)
//	if err != nil {
//		// only nlp.ErrInvalidInput: blank text or no labels
//		log.Fatal(err)
//	}
//
//	top, _ := result.Top()
//	fmt.Printf("%s (%.2f) via %s\n", top.Label, top.Score, result.ProviderUsed)
//
// # Custom Providers
//
// Any nlp.Provider can take part in the chain:
//
//	local := nli.NewLocalProvider(&nli.Config{Backend: nli.BackendNLI}, logger)
//	remote := inference.NewRemoteProvider(&inference.Config{APIToken: os.Getenv("HF_API_TOKEN")}, logger)
//
//	client, err := zeroshot.NewClient([]nlp.Provider{local, remote}, nil, logger)
//
// A token supplied by the user for a single call outranks the configured one
// and is never stored:
//
//	ctx = inference.WithSessionToken(ctx, userToken)
//
// # Multi-label Mode
//
// With allowMultiLabel set, each label is scored independently and scores do
// not sum to one. Otherwise the scores form a distribution over the labels.
package zeroshot
