package cmd

import (
	"fmt"
	"io"

	"escrowbot/chain"
	"escrowbot/config"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func deriveCmd() *cobra.Command {
	var programID string

	cmd := &cobra.Command{
		Use:   "derive <gameIdentifier>",
		Short: "Print the program-derived addresses of a bet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printAddresses(cmd.OutOrStdout(), programID, args[0])
		},
	}

	cmd.Flags().StringVar(&programID, "program", config.DefaultEscrowProgramID, "escrow program ID")
	return cmd
}

func printAddresses(w io.Writer, programID, gameIdentifier string) error {
	program, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return fmt.Errorf("invalid program ID: %w", err)
	}

	addrs, err := chain.DeriveAddresses(program, gameIdentifier)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "transaction state: %s\n", addrs.TransactionState)
	fmt.Fprintf(w, "escrow wallet:     %s\n", addrs.EscrowWallet)
	return nil
}
