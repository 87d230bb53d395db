// Package marketplace contains the Marketplace Gateway bounded context.
// This context manages the uniform integration surface between one seller
// account and many external e-commerce marketplaces on behalf of tenants.
//
// Key concepts:
//   - Adapter: Port interface every vendor adapter implements (Trendyol, Amazon, Shopify, N11)
//   - Credentials: Typed per-marketplace credential variants resolved by the vault
//   - APIError: Normalized error envelope surfaced by every adapter call
//   - BatchItem/BatchResult: Bulk price/stock update contract with per-item failure isolation
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package marketplace
