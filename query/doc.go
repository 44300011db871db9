// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package query answers questions about job mail from the vector store.
//
// The Asker embeds a question, retrieves the nearest indexed messages and
// asks the generator to answer using only those messages. When nothing is
// retrieved it answers with NoMatchAnswer and never calls the generator.
// Querying never writes to any store.
package query
