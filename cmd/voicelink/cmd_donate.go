package main

import (
	"fmt"

	"voicelink/internal/intent"

	"github.com/spf13/cobra"
)

var (
	donateStore    string
	donateProduct  string
	donateQuantity int
	donateGroup    string
)

var donateCmd = &cobra.Command{
	Use:   "donate",
	Short: "Build an intent and donate it to the suggestion services",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := intent.Build(intent.KindAddItem, intent.Parameters{
			Store:    donateStore,
			Product:  donateProduct,
			Quantity: donateQuantity,
		})
		if err != nil {
			return err
		}

		ls, err := openStore()
		if err != nil {
			return err
		}
		defer ls.Close()

		reg := newRegistry(ls)
		group := groupID(donateGroup, in)
		if err := reg.Donate(cmd.Context(), in, group); err != nil {
			return err
		}
		fmt.Printf("donated %q\n", in.Phrase)
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <store>",
	Short: "Report whether a shortcut exists for the given store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ls, err := openStore()
		if err != nil {
			return err
		}
		defer ls.Close()

		reg := newRegistry(ls)
		if err := reg.ReloadAll(cmd.Context()); err != nil {
			return err
		}

		if vs, ok := reg.FindShortcut(args[0]); ok {
			fmt.Printf("registered: %s (%q)\n", vs.ID, vs.Phrase)
		} else {
			fmt.Println("unregistered")
		}
		return nil
	},
}

func init() {
	donateCmd.Flags().StringVar(&donateStore, "store", "", "store name")
	donateCmd.Flags().StringVar(&donateProduct, "product", "", "product name")
	donateCmd.Flags().IntVar(&donateQuantity, "quantity", 0, "quantity (<= 0 means unset)")
	donateCmd.Flags().StringVar(&donateGroup, "group", "", "donation group id (defaults to the kind identifier)")

	rootCmd.AddCommand(donateCmd, checkCmd)
}
