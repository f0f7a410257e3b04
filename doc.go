// Package modelwatch detects newly published models in a cloud model
// catalog and notifies once per run.
//
// A Detector lists the catalog of every configured region concurrently,
// diffs each listing against the snapshot stored for that region, hands all
// new items to a single Notifier, then stores the union of the listing and
// the previous snapshot. Items the catalog temporarily omits therefore stay
// in state and are never reported as new twice.
//
// Example usage:
//
//	cfg, _ := awsconfig.Load(ctx, "")
//	backend, _ := stores.Open(ctx, "dynamodb://model-state")
//	notifier, _ := notifiers.Open(ctx, os.Getenv("NOTIFIER_TARGET"))
//
//	d, err := modelwatch.New(bedrock.New(cfg), state.NewStore(backend),
//	    modelwatch.WithRegions("us-east-1", "us-west-2", "ap-northeast-1"),
//	    modelwatch.WithNotifier(notifier),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := d.Run(ctx)
//	if err != nil {
//	    log.Fatal(err) // configuration problem
//	}
//	fmt.Println(result.Summary())
package modelwatch
