/*
Package cli provides helpers shared by the gateway command.

Output Formatting:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, headers); err != nil {
		return err
	}

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	reload, stopReload := cli.ReloadSignal()
	defer stopReload()

Exit Codes:

ExitCode maps a command error to the process status: 2 for configuration
errors, 1 for everything else.
*/
package cli
