/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "fmt"
    "os"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/app"
)

func main() {
    if err := app.Execute(); err != nil {
        fmt.Fprintf(os.Stderr, "\n%s\n", err)
        os.Exit(1)
    }
}
