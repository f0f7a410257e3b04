// Command modelwatch-lambda runs one detection pass per AWS Lambda
// invocation, typically from an EventBridge schedule.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/agentstation/modelwatch/cmd/modelwatch/app"
	"github.com/agentstation/modelwatch/pkg/constants"
	"github.com/agentstation/modelwatch/pkg/logging"
)

var version = "dev"

func main() {
	application, err := app.New(version, "", "", "lambda")
	if err != nil {
		app.ExitOnError(err)
	}
	logging.SetDefault(*application.Logger())

	ctx := logging.WithLogger(context.Background(), application.Logger())
	detector, err := application.Detector(ctx)
	if err != nil {
		app.ExitOnError(err)
	}

	h := NewHandler(detector)
	lambda.StartWithOptions(h.Handle,
		lambda.WithContext(ctx),
		lambda.WithEnableSIGTERM(func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			if err := application.Shutdown(shutdownCtx); err != nil {
				application.Logger().Error().Err(err).Msg("Shutdown error")
			}
		}),
	)
}
