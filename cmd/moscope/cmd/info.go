/*
Copyright © 2018-2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/moscope/moscope/internal/commands/inspect"
	"github.com/moscope/moscope/pkg/report"
)

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().IntP("arch", "a", -1, "Which architecture to use for fat/universal Mach-O")
	infoCmd.Flags().BoolP("header", "d", false, "Print the mach header")
	infoCmd.Flags().BoolP("loads", "l", false, "Print the load commands")
	infoCmd.Flags().BoolP("segs", "s", false, "Print the segments and sections")
	infoCmd.Flags().BoolP("dylibs", "L", false, "Print the linked dylibs")
	infoCmd.Flags().BoolP("rpaths", "r", false, "Print the runtime search paths")
	infoCmd.Flags().BoolP("symbols", "n", false, "Print the symbol table")
	infoCmd.Flags().BoolP("strings", "c", false, "Print cstrings")
	infoCmd.Flags().BoolP("json", "j", false, "Print the info as JSON")
	infoCmd.Flags().Int("min-len", 4, "Minimum length of strings to print")
	infoCmd.Flags().Int("max-strings", 0, "Maximum number of strings to print")
	infoCmd.Flags().Int("max-symbols", 0, "Maximum number of symbols to print")
	infoCmd.Flags().StringSlice("string-sections", nil, "Sections to scan for strings (default: all)")
	infoCmd.Flags().StringSlice("exclude-sections", nil, "Sections to skip when scanning for strings")
	infoCmd.Flags().String("string-pattern", "", "Only print strings matching this regex")

	viper.BindPFlag("info.arch", infoCmd.Flags().Lookup("arch"))
	viper.BindPFlag("info.header", infoCmd.Flags().Lookup("header"))
	viper.BindPFlag("info.loads", infoCmd.Flags().Lookup("loads"))
	viper.BindPFlag("info.segs", infoCmd.Flags().Lookup("segs"))
	viper.BindPFlag("info.dylibs", infoCmd.Flags().Lookup("dylibs"))
	viper.BindPFlag("info.rpaths", infoCmd.Flags().Lookup("rpaths"))
	viper.BindPFlag("info.symbols", infoCmd.Flags().Lookup("symbols"))
	viper.BindPFlag("info.strings", infoCmd.Flags().Lookup("strings"))
	viper.BindPFlag("info.json", infoCmd.Flags().Lookup("json"))
	viper.BindPFlag("info.min-len", infoCmd.Flags().Lookup("min-len"))
	viper.BindPFlag("info.max-strings", infoCmd.Flags().Lookup("max-strings"))
	viper.BindPFlag("info.max-symbols", infoCmd.Flags().Lookup("max-symbols"))
	viper.BindPFlag("info.string-sections", infoCmd.Flags().Lookup("string-sections"))
	viper.BindPFlag("info.exclude-sections", infoCmd.Flags().Lookup("exclude-sections"))
	viper.BindPFlag("info.string-pattern", infoCmd.Flags().Lookup("string-pattern"))

	infoCmd.MarkZshCompPositionalArgumentFile(1)
}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:     "info <macho>",
	Aliases: []string{"i"},
	Short:   "Explore a Mach-O file",
	Example: heredoc.Doc(`
		# Dump everything
		❯ moscope info /usr/bin/true
		# Only the header and load commands of the arm64e slice
		❯ moscope info --arch 1 --header --loads /usr/lib/dyld
		# Machine readable
		❯ moscope info --json /usr/bin/true | jq .architectures[0].dylibs`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		rep := report.Config{
			Header:     viper.GetBool("info.header"),
			Loads:      viper.GetBool("info.loads"),
			Segments:   viper.GetBool("info.segs"),
			Dylibs:     viper.GetBool("info.dylibs"),
			Rpaths:     viper.GetBool("info.rpaths"),
			Symbols:    viper.GetBool("info.symbols"),
			Strings:    viper.GetBool("info.strings"),
			MaxSymbols: viper.GetInt("info.max-symbols"),
		}
		// with no section toggles, print everything
		if !rep.Header && !rep.Loads && !rep.Segments && !rep.Dylibs &&
			!rep.Rpaths && !rep.Symbols && !rep.Strings {
			max := rep.MaxSymbols
			rep = report.All()
			rep.MaxSymbols = max
		}

		return inspect.Inspect(os.Stdout, args[0], inspect.Config{
			Arch:            viper.GetInt("info.arch"),
			JSON:            viper.GetBool("info.json"),
			Interactive:     true,
			Report:          rep,
			MinLen:          viper.GetInt("info.min-len"),
			MaxStrings:      viper.GetInt("info.max-strings"),
			StringSections:  viper.GetStringSlice("info.string-sections"),
			ExcludeSections: viper.GetStringSlice("info.exclude-sections"),
			StringPattern:   viper.GetString("info.string-pattern"),
		})
	},
}
