package kv

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	putCmd = &cobra.Command{
		Use:   "put [key] [value]",
		Short: "Sets the value for a key and prints the previous value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]
			if old, ok, err := rpcMap.Put(key, value).Get(rpcMap.Timeout()); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, replaced=%v, old=%s\n", key, ok, old)
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if resp, ok, err := rpcMap.Get(key).Get(rpcMap.Timeout()); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v, resp=%s\n", key, ok, resp)
			}
			return nil
		},
	}
	rmCmd = &cobra.Command{
		Use:   "rm [key]",
		Short: "Removes a key value pair and prints the removed value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if old, ok, err := rpcMap.Remove(key).Get(rpcMap.Timeout()); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, removed=%v, old=%s\n", key, ok, old)
			}
			return nil
		},
	}
	sizeCmd = &cobra.Command{
		Use:   "size",
		Short: "Prints the number of stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if size, _, err := rpcMap.Size().Get(rpcMap.Timeout()); err != nil {
				return err
			} else {
				fmt.Printf("size=%s\n", size)
			}
			return nil
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Removes all keys and prints how many were removed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if removed, _, err := rpcMap.Clear().Get(rpcMap.Timeout()); err != nil {
				return err
			} else {
				fmt.Printf("removed=%s\n", removed)
			}
			return nil
		},
	}
)
