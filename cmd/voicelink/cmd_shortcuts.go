package main

import (
	"fmt"

	"voicelink/internal/intent"

	"github.com/spf13/cobra"
)

var (
	addStore    string
	addProduct  string
	addQuantity int
	addPhrase   string
)

// shortcutsCmd groups the local-store shortcut operations. add and remove
// stand in for the host platform's shortcut editing UI.
var shortcutsCmd = &cobra.Command{
	Use:   "shortcuts",
	Short: "Manage shortcuts in the local store",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Reload and print the current shortcut snapshot",
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

		shortcuts := reg.Shortcuts()
		if len(shortcuts) == 0 {
			fmt.Println("no shortcuts")
			return nil
		}
		for _, vs := range shortcuts {
			fmt.Printf("%s  %-30q  store=%q product=%q quantity=%d\n",
				vs.ID, vs.Phrase, vs.Intent.Store, vs.Intent.Product, vs.Intent.Quantity)
		}
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a shortcut in the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := intent.Build(intent.KindAddItem, intent.Parameters{
			Store:    addStore,
			Product:  addProduct,
			Quantity: addQuantity,
		})
		if err != nil {
			return err
		}

		ls, err := openStore()
		if err != nil {
			return err
		}
		defer ls.Close()

		vs, err := ls.AddShortcut(cmd.Context(), in, addPhrase)
		if err != nil {
			return err
		}
		fmt.Printf("created %s (%q)\n", vs.ID, vs.Phrase)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Delete a shortcut from the local store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ls, err := openStore()
		if err != nil {
			return err
		}
		defer ls.Close()

		if err := ls.RemoveShortcut(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("removed %s\n", args[0])
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addStore, "store", "", "store name")
	addCmd.Flags().StringVar(&addProduct, "product", "", "product name")
	addCmd.Flags().IntVar(&addQuantity, "quantity", 0, "quantity (<= 0 means unset)")
	addCmd.Flags().StringVar(&addPhrase, "phrase", "", "spoken phrase (defaults to the intent's phrase)")

	shortcutsCmd.AddCommand(listCmd, addCmd, removeCmd)
	rootCmd.AddCommand(shortcutsCmd)
}
